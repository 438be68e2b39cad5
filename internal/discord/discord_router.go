package discord

import (
	"backend/internal/service"

	"github.com/bwmarrin/discordgo"
)

// Router は Discord の Interaction を各ハンドラに振り分ける役割。
type Router struct {
	AvatarService   service.AvatarService
	WorldMapService service.WorldMapService
	// LeaderboardService service.LeaderboardService
}

// NewRouter で必要な service を全部 DI しておく。
func NewRouter(
	avatarService service.AvatarService,
	worldMapService service.WorldMapService,
	// leaderboardService service.LeaderboardService,
) *Router {
	return &Router{
		AvatarService:   avatarService,
		WorldMapService: worldMapService,
		// LeaderboardService: leaderboardService,
	}
}

// HandleInteraction は discordgo のイベントハンドラとして登録される入口。
// main.go 側で session.AddHandler(router.HandleInteraction) する想定。
func (r *Router) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		switch data.Name {
		case "ping":
			// /ping
			r.handlePing(s, i)
		case "progress":
			r.handleProgress(s, i)

		// 将来的な拡張 (コメントアウトしておいてOK)
		// case "leaderboard":
		// 	r.handleLeaderboard(s, i)
		default:
			// 未対応コマンドはとりあえず無視 or ログに出すくらいでOK
			return
		}
	default:
		return
	}
}

// /ping コマンドの処理。
func (r *Router) handlePing(s *discordgo.Session, i *discordgo.InteractionCreate) {
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "pong",
		},
	})
}
