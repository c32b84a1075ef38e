package command

import "github.com/book-expert/voicevox-service/internal/synthesis"

// Reply texts. Formats taking %[1]s receive the command prefix.
const (
	replyInternalError = "语音合成发生异常"
	replyForbidden     = "无权限"
	replyUsage         = "用法：%[1]s [speaker名称或ID] 文本\n或：%[1]s set <参数> <值>\n或：%[1]s get\n或：%[1]s list"

	replySetKeyUsage  = "用法：%[1]s setkey <apiKey>"
	replySetKeyDone   = "VoiceVox ApiKey 已更新"
	replySetKeyFailed = "VoiceVox ApiKey 保存失败"

	replySetSpaceUsage  = "用法：%[1]s setspace <on|off>"
	replySetSpaceOn     = "中文转换已开启空格分隔"
	replySetSpaceOff    = "中文转换已关闭空格分隔"
	replySetSpaceFailed = "设置保存失败"

	replySetUsage              = "用法：\n%[1]s set speaker <名称或ID>\n%[1]s set pitch <值>\n%[1]s set speed <值>\n%[1]s set intonation <值>"
	replySetUnknownParam       = "支持的参数：speaker, pitch, speed, intonation"
	replySpeakerNotFound       = "未找到说话人\"%[2]s\"，使用 %[1]s list 查看可用列表"
	replyPitchNotNumber        = "pitch 必须是数字"
	replySpeedNotPositive      = "speed 必须是正数"
	replyIntonationNotPositive = "intonation 必须是正数"
	replySetSaveFailed         = "设置保存失败"
	replySetSpeakerDone        = "已设置说话人为：%s (ID: %d)"
	replySetValueDone          = "已设置 %s = %s"
	replyResetDone             = "个人偏好已重置为默认配置"
	replyResetFailed           = "重置失败"
	replyPrefsHeader           = "您的个人偏好设置：\n"
	replyPrefsBody             = "说话人: %s (ID: %d)\n音调 (pitch): %s\n语调 (intonation): %s\n语速 (speed): %s"
	replyListNotFound          = "未找到包含\"%[2]s\"的说话人\n使用 %[1]s list 查看完整列表"
	replyMissingAPIKey         = "请先配置 VoiceVox ApiKey：%[1]s setkey <apiKey>"
	replySynthesizing          = "正在合成语音，请稍等…"
	replyTransportError        = "合成失败(%d)：%s"
	replyAPIError              = "合成失败：%s"
	replyAPINoAudio            = "接口未返回音频"
	replyAPIReturned           = "接口返回：%s"
	replyDeliveryFailed        = "语音发送失败"
	replyUnknownSpeakerLabel   = "未知"
)

// apiErrorTips maps known failure tokens to their user-facing cause.
var apiErrorTips = map[synthesis.APICode]string{
	synthesis.CodeInvalidAPIKey:   "API Key 无效",
	synthesis.CodeFailed:          "合成失败",
	synthesis.CodeNotEnoughPoints: "积分不足（notEnoughPoints）",
}
