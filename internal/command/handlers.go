package command

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/book-expert/voicevox-service/internal/prefs"
)

const (
	// listDisplayCap bounds the grouped overview.
	listDisplayCap = 15

	paramSpeaker    = "speaker"
	paramPitch      = "pitch"
	paramSpeed      = "speed"
	paramIntonation = "intonation"
)

var setArgsPattern = regexp.MustCompile(`(?s)^(\w+)\s+(.+)$`)

func (r *Router) handleSetKey(ctx context.Context, c call) {
	if !c.msg.IsMaster {
		r.reply(ctx, c, replyForbidden)

		return
	}

	if c.arg == "" {
		r.reply(ctx, c, replySetKeyUsage, r.prefix)

		return
	}

	err := r.Settings.SetAPIKey(c.arg)
	if err != nil {
		r.Logger.Error("Failed to persist API key: %v", err)
		r.reply(ctx, c, replySetKeyFailed)

		return
	}

	r.Logger.Info("API key updated by user %s", c.msg.UserID)
	r.reply(ctx, c, replySetKeyDone)
}

func (r *Router) handleSetSpace(ctx context.Context, c call) {
	if !c.msg.IsMaster {
		r.reply(ctx, c, replyForbidden)

		return
	}

	enabled, ok := parseSwitch(c.arg)
	if !ok {
		r.reply(ctx, c, replySetSpaceUsage, r.prefix)

		return
	}

	err := r.Settings.SetAddSpaces(enabled)
	if err != nil {
		r.Logger.Error("Failed to persist addSpaces: %v", err)
		r.reply(ctx, c, replySetSpaceFailed)

		return
	}

	if enabled {
		r.reply(ctx, c, replySetSpaceOn)
	} else {
		r.reply(ctx, c, replySetSpaceOff)
	}
}

func parseSwitch(value string) (enabled, ok bool) {
	switch strings.ToLower(value) {
	case "on", "true", "1", "开", "开启":
		return true, true
	case "off", "false", "0", "关", "关闭":
		return false, true
	default:
		return false, false
	}
}

// handleSet validates the value before the stored record is read.
func (r *Router) handleSet(ctx context.Context, c call) {
	match := setArgsPattern.FindStringSubmatch(c.arg)
	if match == nil {
		r.reply(ctx, c, replySetUsage, r.prefix)

		return
	}

	param, value := strings.ToLower(match[1]), strings.TrimSpace(match[2])

	switch param {
	case paramSpeaker:
		r.setSpeaker(ctx, c, value)
	case paramPitch:
		number, valid := parseNumber(value)
		if !valid {
			r.reply(ctx, c, replyPitchNotNumber)

			return
		}

		r.updatePrefs(ctx, c, param, number, func(rec *prefs.Record) { rec.Pitch = &number })
	case paramSpeed:
		number, valid := parseNumber(value)
		if !valid || number <= 0 {
			r.reply(ctx, c, replySpeedNotPositive)

			return
		}

		r.updatePrefs(ctx, c, param, number, func(rec *prefs.Record) { rec.Speed = &number })
	case paramIntonation:
		number, valid := parseNumber(value)
		if !valid || number <= 0 {
			r.reply(ctx, c, replyIntonationNotPositive)

			return
		}

		r.updatePrefs(ctx, c, param, number, func(rec *prefs.Record) { rec.IntonationScale = &number })
	default:
		r.reply(ctx, c, replySetUnknownParam)
	}
}

func (r *Router) setSpeaker(ctx context.Context, c call, token string) {
	id, found := r.Speakers.Resolve(token)
	if !found {
		r.reply(ctx, c, replySpeakerNotFound, r.prefix, token)

		return
	}

	rec := r.Prefs.Get(ctx, c.msg.UserID)
	rec.Speaker = &id

	if !r.Prefs.Set(ctx, c.msg.UserID, rec) {
		r.reply(ctx, c, replySetSaveFailed)

		return
	}

	r.reply(ctx, c, replySetSpeakerDone, r.speakerLabel(id), id)
}

func (r *Router) updatePrefs(ctx context.Context, c call, param string, value float64, apply func(*prefs.Record)) {
	rec := r.Prefs.Get(ctx, c.msg.UserID)
	apply(&rec)

	if !r.Prefs.Set(ctx, c.msg.UserID, rec) {
		r.reply(ctx, c, replySetSaveFailed)

		return
	}

	r.reply(ctx, c, replySetValueDone, param, formatNumber(value))
}

func (r *Router) handleGet(ctx context.Context, c call) {
	params := r.parameters(ctx, c.msg.UserID)

	r.reply(ctx, c, replyPrefsHeader+replyPrefsBody,
		r.speakerLabel(params.Speaker), params.Speaker,
		formatNumber(params.Pitch),
		formatNumber(params.IntonationScale),
		formatNumber(params.Speed))
}

func (r *Router) handleReset(ctx context.Context, c call) {
	if !r.Prefs.Clear(ctx, c.msg.UserID) {
		r.reply(ctx, c, replyResetFailed)

		return
	}

	r.reply(ctx, c, replyResetDone)
}

func (r *Router) handleList(ctx context.Context, c call) {
	if c.arg == "" {
		r.reply(ctx, c, r.renderOverview())

		return
	}

	matches := r.Speakers.Filter(c.arg)
	if len(matches) == 0 {
		r.reply(ctx, c, replyListNotFound, r.prefix, c.arg)

		return
	}

	var b strings.Builder

	fmt.Fprintf(&b, "🔍 搜索\"%s\"的结果：\n\n", c.arg)

	for _, s := range matches {
		fmt.Fprintf(&b, "• %s (ID: %d)\n", s.Name, s.ID)
	}

	fmt.Fprintf(&b, "\n共找到 %d 个匹配项\n", len(matches))
	b.WriteString("💡 使用示例：\n")
	fmt.Fprintf(&b, "• %s set speaker %s\n", r.prefix, matches[0].Name)
	fmt.Fprintf(&b, "• %s %s こんにちは", r.prefix, matches[0].Name)

	r.reply(ctx, c, b.String())
}

func (r *Router) renderOverview() string {
	groups := r.Speakers.Groups()

	var b strings.Builder

	b.WriteString("🎭 VoiceVox 说话人概览：\n\n")

	for i, group := range groups {
		if i >= listDisplayCap {
			fmt.Fprintf(&b, "\n... 还有 %d 个角色\n", len(groups)-i)

			break
		}

		fmt.Fprintf(&b, "📢 %s (%d)", group.Base, group.FirstID())

		if len(group.Members) > 1 {
			fmt.Fprintf(&b, " +%d变体", len(group.Members)-1)
		}

		b.WriteString("\n")
	}

	b.WriteString("\n🔎 筛选功能：\n")
	fmt.Fprintf(&b, "• %s list 毛豆 - 查看毛豆相关\n", r.prefix)
	fmt.Fprintf(&b, "• %s list 四国 - 查看四国相关\n", r.prefix)
	fmt.Fprintf(&b, "• %s list 3 - 查看ID为3的说话人\n\n", r.prefix)
	b.WriteString("💡 使用示例：\n")
	fmt.Fprintf(&b, "• %s set speaker 毛豆\n", r.prefix)
	fmt.Fprintf(&b, "• %s 年糕 こんにちは", r.prefix)

	return b.String()
}

func (r *Router) handleHelp(ctx context.Context, c call) {
	var b strings.Builder

	b.WriteString("VoiceVox 帮助\n\n【基础功能】\n")
	fmt.Fprintf(&b, "%s 文本 - 使用默认说话人合成语音\n", r.prefix)
	fmt.Fprintf(&b, "%s <说话人> 文本 - 使用指定说话人合成语音\n", r.prefix)
	fmt.Fprintf(&b, "%s 文本 - 中文合成语音\n", r.chinesePrefix)
	fmt.Fprintf(&b, "%s <说话人> 文本 - 指定说话人合成中文语音\n", r.chinesePrefix)
	fmt.Fprintf(&b, "%s list [筛选词] - 查看或筛选说话人列表\n", r.prefix)
	b.WriteString("\n【个人设置】\n")
	fmt.Fprintf(&b, "%s set speaker <名称> - 设置个人偏好说话人\n", r.prefix)
	fmt.Fprintf(&b, "%s set pitch <值> - 设置音调（pitch）\n", r.prefix)
	fmt.Fprintf(&b, "%s set speed <值> - 设置语速（speed）\n", r.prefix)
	fmt.Fprintf(&b, "%s set intonation <值> - 设置语调缩放（intonation）\n", r.prefix)
	fmt.Fprintf(&b, "%s get - 查看当前个人偏好设置\n", r.prefix)
	fmt.Fprintf(&b, "%s reset - 重置个人偏好为默认配置", r.prefix)

	if c.msg.IsMaster {
		b.WriteString("\n\n【管理功能】\n")
		fmt.Fprintf(&b, "%s setkey <apiKey> - 设置 VoiceVox API Key\n", r.prefix)
		fmt.Fprintf(&b, "%s setspace <on|off> - 设置中文转换是否添加空格分隔", r.prefix)
	}

	r.reply(ctx, c, b.String())
}

func (r *Router) speakerLabel(id int) string {
	name, ok := r.Speakers.Name(id)
	if !ok {
		return replyUnknownSpeakerLabel
	}

	return name
}

// parseNumber accepts finite decimal numbers only.
func parseNumber(value string) (float64, bool) {
	number, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, false
	}

	return number, true
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}
