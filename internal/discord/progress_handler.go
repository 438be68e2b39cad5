package discord

import (
	"backend/internal/domain"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	progressColorKnight  = 0x3498DB
	progressColorMage    = 0x9B59B6
	progressColorRogue   = 0x2ECC71
	progressColorPaladin = 0xF1C40F
)

func classColor(class string) int {
	switch class {
	case domain.ClassKnight:
		return progressColorKnight
	case domain.ClassMage:
		return progressColorMage
	case domain.ClassRogue:
		return progressColorRogue
	case domain.ClassPaladin:
		return progressColorPaladin
	default:
		return 0x95A5A6
	}
}

// /progress コマンドの処理。アバターの現在状況をエフェメラルで返す。
func (r *Router) handleProgress(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := commandContext()
	defer cancel()

	userID := interactionUserID(i)
	if userID == "" {
		respondEphemeral(s, i, "ユーザー情報が取得できなかった")
		return
	}

	avatar, err := r.AvatarService.GetByUser(ctx, userID)
	if err != nil {
		if derr, ok := domain.AsDomainError(err); ok && derr.Kind == domain.KindNotFound {
			respondEphemeral(s, i, "アバターが未作成だ。先にWebから作成してほしい。")
			return
		}
		logf("[discord][progress] avatar fetch failed: user=%s err=%v", userID, err)
		respondEphemeral(s, i, "取得に失敗した。少し待ってから試してほしい。")
		return
	}

	cities, err := r.WorldMapService.Map(ctx, userID)
	if err != nil {
		logf("[discord][progress] worldmap fetch failed: user=%s err=%v", userID, err)
		respondEphemeral(s, i, "取得に失敗した。少し待ってから試してほしい。")
		return
	}

	cleared := 0
	var frontier string
	for _, city := range cities {
		if city.Cleared {
			cleared++
			continue
		}
		if city.Unlocked && frontier == "" {
			frontier = fmt.Sprintf("%s (No.%d)", city.Name, city.Number)
		}
	}
	if frontier == "" {
		frontier = "全都市制覇 🎉"
	}

	user := interactionUser(i)
	embed := &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("%s の冒険の記録", avatar.Name),
		Timestamp: time.Now().Format(time.RFC3339),
		Color:     classColor(avatar.CharacterClass),
		Author: &discordgo.MessageEmbedAuthor{
			Name: discordDisplayName(user),
		},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "クラス", Value: avatar.CharacterClass, Inline: true},
			{Name: "レベル", Value: strconv.Itoa(avatar.Level), Inline: true},
			{Name: "経験値", Value: strconv.Itoa(avatar.Experience), Inline: true},
			{Name: "HP", Value: fmt.Sprintf("%d / %d", avatar.HitPoints, avatar.MaxHitPoints), Inline: true},
			{Name: "制覇した都市", Value: fmt.Sprintf("%d / %d", cleared, len(cities)), Inline: true},
			{Name: "次の都市", Value: frontier, Inline: true},
		},
	}
	if user != nil && user.Avatar != "" {
		embed.Author.IconURL = user.AvatarURL("")
	}
	embed.Footer = &discordgo.MessageEmbedFooter{
		Text: progressBar(cleared, len(cities)),
	}
	respondEphemeralEmbed(s, i, embed)
}

func progressBar(done, total int) string {
	if total <= 0 {
		return ""
	}
	var b strings.Builder
	for n := 1; n <= total; n++ {
		if n <= done {
			b.WriteString("■")
		} else {
			b.WriteString("□")
		}
	}
	return b.String()
}
