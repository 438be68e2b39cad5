package discord

import "github.com/bwmarrin/discordgo"

// Commands はこのBotで使う全てのスラッシュコマンド定義を返す。
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "ping",
			Description: "Check if the bot is alive.",
		},
		{
			Name:        "progress",
			Description: "Show your avatar's level, HP and city progress.",
			DMPermission: func() *bool {
				v := false
				return &v
			}(),
		},
		// ここに今後 /leaderboard /duel を足していく:
		// {
		// 	Name:        "leaderboard",
		// 	Description: "Show the guild's top avatars.",
		// },
	}
}
