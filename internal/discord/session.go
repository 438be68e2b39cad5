package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Session は discordgo の接続をラップする。main.go 側は token があるときだけ作る。
type Session interface {
	AddHandler(handler any)
	Start(ctx context.Context) error
	RegisterCommands(ctx context.Context, appID, guildID string) error
	SendMessage(channelID, content string) error
	Close() error
}

type session struct {
	s *discordgo.Session
}

func NewSession(token string) (Session, error) {
	if token == "" {
		return nil, errors.New("token is required")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discordgo new: %w", err)
	}
	// スラッシュコマンドと通知投稿だけなので intents は最小限。
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages
	return &session{s: s}, nil
}

func (x *session) AddHandler(handler any) {
	x.s.AddHandler(handler)
}

// Start はWebSocket接続を張る。discordgo.Open は ctx を受けないので
// タイムアウトはこちらで面倒を見る。
func (x *session) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- x.s.Open()
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("discord open: %w", err)
		}
		return nil
	}
}

// RegisterCommands はスラッシュコマンドを登録する。
// guildID が空だとグローバル登録になり反映に時間がかかる。dev中はGuild指定推奨。
func (x *session) RegisterCommands(ctx context.Context, appID, guildID string) error {
	if appID == "" {
		return errors.New("appID is required")
	}
	for _, cmd := range Commands() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if _, err := x.s.ApplicationCommandCreate(appID, guildID, cmd); err != nil {
			return fmt.Errorf("register command %q: %w", cmd.Name, err)
		}
	}
	return nil
}

func (x *session) SendMessage(channelID, content string) error {
	if channelID == "" {
		return errors.New("channelID is required")
	}
	_, err := x.s.ChannelMessageSend(channelID, content)
	return err
}

func (x *session) Close() error {
	return x.s.Close()
}
