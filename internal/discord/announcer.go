package discord

import "fmt"

// Announcer はレベルアップや都市解放をギルドのチャンネルに流す。
// service.Announcer を満たす。送信失敗はログに落とすだけでバトル処理には返さない。
type Announcer struct {
	session   Session
	channelID string
}

func NewAnnouncer(session Session, channelID string) *Announcer {
	return &Announcer{session: session, channelID: channelID}
}

func (a *Announcer) AnnounceLevelUp(avatarName string, level int) {
	a.post(fmt.Sprintf("🎉 **%s** がレベル %d に到達した！", avatarName, level))
}

func (a *Announcer) AnnounceCityUnlock(avatarName, cityName string, cityNumber int) {
	a.post(fmt.Sprintf("🗺️ **%s** が新しい都市「%s」(No.%d) を解放した！", avatarName, cityName, cityNumber))
}

func (a *Announcer) AnnounceReward(avatarName, rewardTitle string) {
	a.post(fmt.Sprintf("🏆 **%s** が称号「%s」を獲得した！", avatarName, rewardTitle))
}

func (a *Announcer) post(content string) {
	if a == nil || a.session == nil || a.channelID == "" {
		return
	}
	if err := a.session.SendMessage(a.channelID, content); err != nil {
		logf("[discord][announce] send failed: channel=%s err=%v", a.channelID, err)
	}
}
