package speaker

// DefaultCatalogue lists the VoiceVox styles exposed by the synthesis API.
// A character's normal style carries the bare character name; other styles
// append a qualifier from DefaultQualifiers.
var DefaultCatalogue = []Speaker{
	{ID: 0, Name: "四国玫碳甜"},
	{ID: 1, Name: "毛豆甜"},
	{ID: 2, Name: "四国玫碳"},
	{ID: 3, Name: "毛豆"},
	{ID: 4, Name: "四国玫碳性感"},
	{ID: 5, Name: "毛豆性感"},
	{ID: 6, Name: "四国玫碳傲娇"},
	{ID: 7, Name: "毛豆傲娇"},
	{ID: 8, Name: "春日部䌷"},
	{ID: 9, Name: "波音律"},
	{ID: 10, Name: "雨晴羽护士"},
	{ID: 11, Name: "玄野武宏"},
	{ID: 12, Name: "白上虎太郎"},
	{ID: 13, Name: "青山龙星"},
	{ID: 14, Name: "冥鸣向日葵"},
	{ID: 15, Name: "九州天空甜"},
	{ID: 16, Name: "九州天空"},
	{ID: 17, Name: "九州天空性感"},
	{ID: 18, Name: "九州天空傲娇"},
	{ID: 19, Name: "九州天空耳语"},
	{ID: 20, Name: "年糕"},
	{ID: 21, Name: "剑崎雌雄"},
	{ID: 22, Name: "毛豆耳语"},
	{ID: 23, Name: "WhiteCUL"},
	{ID: 24, Name: "WhiteCUL开心"},
	{ID: 25, Name: "WhiteCUL悲伤"},
	{ID: 26, Name: "WhiteCUL哭泣"},
	{ID: 27, Name: "后鬼人类"},
	{ID: 28, Name: "后鬼玩偶"},
	{ID: 29, Name: "No.7"},
	{ID: 30, Name: "No.7播报"},
	{ID: 31, Name: "No.7朗读"},
	{ID: 32, Name: "白上虎太郎开心"},
	{ID: 33, Name: "白上虎太郎胆怯"},
	{ID: 34, Name: "白上虎太郎愤怒"},
	{ID: 35, Name: "白上虎太郎哭泣"},
	{ID: 36, Name: "四国玫碳耳语"},
	{ID: 37, Name: "四国玫碳窃窃私语"},
	{ID: 38, Name: "毛豆窃窃私语"},
	{ID: 39, Name: "玄野武宏开心"},
	{ID: 40, Name: "玄野武宏不爽"},
	{ID: 41, Name: "玄野武宏悲伤"},
	{ID: 42, Name: "小型式爷爷"},
	{ID: 43, Name: "樱歌Miko"},
	{ID: 44, Name: "樱歌Miko第二形态"},
	{ID: 45, Name: "樱歌Miko萝莉"},
	{ID: 46, Name: "小夜SAYO"},
	{ID: 47, Name: "护士机器人T型"},
	{ID: 48, Name: "护士机器人T型轻松"},
	{ID: 49, Name: "护士机器人T型恐怖"},
	{ID: 50, Name: "护士机器人T型悄悄话"},
	{ID: 51, Name: "圣骑士红樱"},
	{ID: 52, Name: "雀松朱司"},
	{ID: 53, Name: "麒岛宗麟"},
	{ID: 54, Name: "春歌七七"},
	{ID: 55, Name: "猫使阿尔"},
	{ID: 56, Name: "猫使阿尔冷静"},
	{ID: 57, Name: "猫使阿尔兴奋"},
	{ID: 58, Name: "猫使比伊"},
	{ID: 59, Name: "猫使比伊冷静"},
	{ID: 60, Name: "猫使比伊害羞"},
	{ID: 61, Name: "中国兔"},
	{ID: 62, Name: "中国兔惊讶"},
	{ID: 63, Name: "中国兔害怕"},
	{ID: 64, Name: "中国兔虚弱"},
	{ID: 65, Name: "波音律女王"},
	{ID: 66, Name: "栗田栗子"},
	{ID: 67, Name: "满别花丸元气"},
	{ID: 68, Name: "满别花丸"},
	{ID: 69, Name: "满别花丸窃窃私语"},
	{ID: 70, Name: "满别花丸撒娇"},
	{ID: 71, Name: "满别花丸男孩"},
	{ID: 72, Name: "琴咏妮雅"},
	{ID: 73, Name: "毛豆热血"},
	{ID: 74, Name: "毛豆严肃"},
	{ID: 75, Name: "毛豆实况"},
	{ID: 76, Name: "毛豆哭泣"},
	{ID: 77, Name: "毛豆低血压"},
	{ID: 78, Name: "毛豆觉醒"},
}

// DefaultQualifiers are the mood/variant markers appended to a character
// name. The base name ends at the earliest occurrence of any of them.
var DefaultQualifiers = []string{
	"甜甜", "甜", "傲娇", "性感", "耳语", "窃窃私语", "虚弱", "哭泣", "开心",
	"愤怒", "悲伤", "温柔", "不爽", "热血", "冷静", "兴奋", "强势", "害羞",
	"惊讶", "害怕", "元气", "撒娇", "男孩", "实况", "胆怯", "绝望", "严肃",
	"二形态", "萝莉", "轻松", "恐怖", "悄悄话", "觉醒", "低血压", "女王",
	"人类", "玩偶", "鬼形态", "播报", "朗读", "第二形态",
}
