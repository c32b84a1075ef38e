package command_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/book-expert/logger"
	"github.com/book-expert/voicevox-service/internal/command"
	"github.com/book-expert/voicevox-service/internal/config"
	"github.com/book-expert/voicevox-service/internal/core"
	"github.com/book-expert/voicevox-service/internal/kvstore"
	"github.com/book-expert/voicevox-service/internal/prefs"
	"github.com/book-expert/voicevox-service/internal/speaker"
	"github.com/book-expert/voicevox-service/internal/synthesis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errNetwork  = errors.New("network down")
	errDelivery = errors.New("all tiers failed")
	errDisk     = errors.New("disk full")
)

// chatSurface records every reply.
type chatSurface struct {
	mu      sync.Mutex
	replies []string
}

func (s *chatSurface) Reply(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replies = append(s.replies, text)

	return nil
}

func (s *chatSurface) UploadRecord(context.Context, string) error { return nil }

func (s *chatSurface) AttachRecord(context.Context, string) error { return nil }

func (s *chatSurface) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.replies) == 0 {
		return ""
	}

	return s.replies[len(s.replies)-1]
}

type fakeSettings struct {
	mu       sync.Mutex
	settings config.Settings
	failSave bool
}

func (f *fakeSettings) Settings() config.Settings {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.settings
}

func (f *fakeSettings) SetAPIKey(apiKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failSave {
		return errDisk
	}

	f.settings.APIKey = apiKey

	return nil
}

func (f *fakeSettings) SetAddSpaces(enabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.settings.AddSpaces = enabled

	return nil
}

type fakeTransliterator struct {
	calls  int
	spaced bool
}

func (f *fakeTransliterator) Convert(_ context.Context, text string, spaced bool) string {
	f.calls++
	f.spaced = spaced

	return strings.ReplaceAll(text, "毛豆", "マオドウ")
}

type fakeSynthesizer struct {
	outcome synthesis.Outcome
	err     error
	panics  bool

	calls  int
	text   string
	params prefs.Parameters
	apiKey string
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, text string, params prefs.Parameters, apiKey string) (synthesis.Outcome, error) {
	if f.panics {
		panic("synthesizer exploded")
	}

	f.calls++
	f.text, f.params, f.apiKey = text, params, apiKey

	return f.outcome, f.err
}

type fakeDeliverer struct {
	err      error
	locators []string
}

func (f *fakeDeliverer) Deliver(_ context.Context, _ core.Surface, locator string) error {
	f.locators = append(f.locators, locator)

	return f.err
}

type fixture struct {
	router   *command.Router
	kv       *kvstore.Memory
	prefs    *prefs.Store
	settings *fakeSettings
	translit *fakeTransliterator
	synth    *fakeSynthesizer
	deliver  *fakeDeliverer
	surface  *chatSurface
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log, err := logger.New(t.TempDir(), "command-test.log")
	require.NoError(t, err)

	t.Cleanup(func() { _ = log.Close() })

	f := &fixture{
		kv: kvstore.NewMemory(),
		settings: &fakeSettings{settings: config.Settings{
			APIKey:  "secret",
			BaseURL: config.DefaultBaseURL,
			Command: config.DefaultCommand,
		}},
		translit: &fakeTransliterator{},
		synth:    &fakeSynthesizer{outcome: synthesis.Audio{Locator: "https://cdn.example/a.wav"}},
		deliver:  &fakeDeliverer{},
		surface:  &chatSurface{},
	}
	f.prefs = prefs.NewStore(f.kv, log)
	f.router = command.New(command.Dependencies{
		Settings:       f.settings,
		Prefs:          f.prefs,
		Speakers:       speaker.NewDefault(),
		Transliterator: f.translit,
		Synthesizer:    f.synth,
		Deliverer:      f.deliver,
		Logger:         log,
	})

	return f
}

func (f *fixture) send(t *testing.T, text string, master bool) bool {
	t.Helper()

	return f.router.Handle(context.Background(), command.Message{UserID: "42", Text: text, IsMaster: master}, f.surface)
}

func TestHandle_IgnoresOtherMessages(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	assert.False(t, f.send(t, "hello there", false))
	assert.False(t, f.send(t, "#help", false))
	assert.Empty(t, f.surface.replies)
}

func TestSpeak_UsesPreferencesAndDelivers(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.True(t, f.prefs.Set(context.Background(), "42", prefs.Record{Speed: ptr(1.5)}))

	require.True(t, f.send(t, "#vv こんにちは", false))

	assert.Equal(t, "こんにちは", f.synth.text)
	assert.Equal(t, "secret", f.synth.apiKey)
	assert.Equal(t, prefs.Parameters{Speaker: 0, Pitch: 0, Speed: 1.5, IntonationScale: 1}, f.synth.params)
	assert.Equal(t, []string{"https://cdn.example/a.wav"}, f.deliver.locators)
	assert.Equal(t, []string{"正在合成语音，请稍等…"}, f.surface.replies)
	assert.Zero(t, f.translit.calls)
}

func TestSpeak_SpeakerOverride(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	require.True(t, f.send(t, "#vv 年糕  こんにちは  世界", false))
	assert.Equal(t, 20, f.synth.params.Speaker)
	assert.Equal(t, "こんにちは 世界", f.synth.text)
}

func TestSpeak_SingleTokenIsText(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	require.True(t, f.send(t, "#vv 年糕", false))
	assert.Equal(t, 0, f.synth.params.Speaker)
	assert.Equal(t, "年糕", f.synth.text)
}

func TestSpeak_ConfigDefaultsApply(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.settings.settings.Speaker = ptr(8)
	f.settings.settings.Pitch = ptr(0.1)

	require.True(t, f.send(t, "#vv テスト", false))
	assert.Equal(t, prefs.Parameters{Speaker: 8, Pitch: 0.1, Speed: 1, IntonationScale: 1}, f.synth.params)
}

func TestSpeak_EmptyContentShowsUsage(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	require.True(t, f.send(t, "#vv", false))
	assert.Contains(t, f.surface.last(), "用法：#vv [speaker名称或ID] 文本")
	assert.Zero(t, f.synth.calls)
}

func TestSpeak_MissingAPIKeyStopsBeforeNetwork(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.settings.settings.APIKey = ""

	require.True(t, f.send(t, "#vv こんにちは", false))
	assert.Equal(t, []string{"请先配置 VoiceVox ApiKey：#vv setkey <apiKey>"}, f.surface.replies)
	assert.Zero(t, f.synth.calls)
	assert.Empty(t, f.deliver.locators)
}

func TestSpeak_OutcomeReplies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		outcome synthesis.Outcome
		want    string
	}{
		{"transport", synthesis.TransportError{StatusCode: 503, Body: "busy"}, "合成失败(503)：busy"},
		{"invalid key", synthesis.APIError{Code: synthesis.CodeInvalidAPIKey, Body: "invalidApiKey"}, "合成失败：API Key 无效"},
		{"not enough points", synthesis.APIError{Code: synthesis.CodeNotEnoughPoints, Body: "notEnoughPoints"}, "合成失败：积分不足（notEnoughPoints）"},
		{"failed", synthesis.APIError{Code: synthesis.CodeFailed, Body: "failed"}, "合成失败：合成失败"},
		{"other", synthesis.APIError{Code: synthesis.CodeOther, Body: "maintenance"}, "合成失败：接口返回：maintenance"},
		{"empty", synthesis.APIError{Code: synthesis.CodeOther}, "合成失败：接口未返回音频"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.synth.outcome = tt.outcome

			require.True(t, f.send(t, "#vv テスト", false))
			assert.Equal(t, tt.want, f.surface.last())
			assert.Empty(t, f.deliver.locators)
		})
	}
}

func TestSpeak_SynthesisErrorReplies(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.synth.err = errNetwork

	require.True(t, f.send(t, "#vv テスト", false))
	assert.Equal(t, "语音合成发生异常", f.surface.last())
}

func TestSpeak_DeliveryFailureReplies(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.deliver.err = errDelivery

	require.True(t, f.send(t, "#vv テスト", false))
	assert.Equal(t, "语音发送失败", f.surface.last())
}

func TestSpeak_PanicBecomesGenericReply(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.synth.panics = true

	require.True(t, f.send(t, "#vv テスト", false))
	assert.Equal(t, "语音合成发生异常", f.surface.last())
}

func TestChineseSpeak_Transliterates(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.settings.settings.AddSpaces = true

	require.True(t, f.send(t, "#cvv 年糕 毛豆です", false))
	assert.Equal(t, 1, f.translit.calls)
	assert.True(t, f.translit.spaced)
	assert.Equal(t, 20, f.synth.params.Speaker)
	assert.Equal(t, "マオドウです", f.synth.text)
}

func TestChineseSpeak_MissingKeySkipsTransliteration(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.settings.settings.APIKey = ""

	require.True(t, f.send(t, "#cvv 毛豆", false))
	assert.Zero(t, f.translit.calls)
	assert.Zero(t, f.synth.calls)
}

func TestSetKey(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	require.True(t, f.send(t, "#vv setkey new-key", false))
	assert.Equal(t, "无权限", f.surface.last())
	assert.Equal(t, "secret", f.settings.Settings().APIKey)

	require.True(t, f.send(t, "#vv setkey", true))
	assert.Equal(t, "用法：#vv setkey <apiKey>", f.surface.last())

	require.True(t, f.send(t, "#VV SETKEY new-key", true))
	assert.Equal(t, "VoiceVox ApiKey 已更新", f.surface.last())
	assert.Equal(t, "new-key", f.settings.Settings().APIKey)

	f.settings.failSave = true

	require.True(t, f.send(t, "#vv setkey other", true))
	assert.Equal(t, "VoiceVox ApiKey 保存失败", f.surface.last())
}

func TestSetSpace(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	require.True(t, f.send(t, "#vv setspace on", false))
	assert.Equal(t, "无权限", f.surface.last())

	require.True(t, f.send(t, "#vv setspace 开", true))
	assert.True(t, f.settings.Settings().AddSpaces)

	require.True(t, f.send(t, "#vv setspace false", true))
	assert.False(t, f.settings.Settings().AddSpaces)

	require.True(t, f.send(t, "#vv setspace maybe", true))
	assert.Equal(t, "用法：#vv setspace <on|off>", f.surface.last())
}

func TestSet_Speaker(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	require.True(t, f.send(t, "#vv set speaker 年糕", false))
	assert.Equal(t, "已设置说话人为：年糕 (ID: 20)", f.surface.last())
	assert.Equal(t, ptr(20), f.prefs.Get(context.Background(), "42").Speaker)

	require.True(t, f.send(t, "#vv set speaker 不存在的人", false))
	assert.Equal(t, "未找到说话人\"不存在的人\"，使用 #vv list 查看可用列表", f.surface.last())
	assert.Equal(t, ptr(20), f.prefs.Get(context.Background(), "42").Speaker)
}

func TestSet_NumericAxes(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	require.True(t, f.send(t, "#vv set pitch -0.05", false))
	assert.Equal(t, "已设置 pitch = -0.05", f.surface.last())

	require.True(t, f.send(t, "#vv set Speed 1.2", false))
	assert.Equal(t, "已设置 speed = 1.2", f.surface.last())

	require.True(t, f.send(t, "#vv set intonation 1.5", false))
	assert.Equal(t, "已设置 intonation = 1.5", f.surface.last())

	rec := f.prefs.Get(ctx, "42")
	assert.Equal(t, prefs.Record{Pitch: ptr(-0.05), Speed: ptr(1.2), IntonationScale: ptr(1.5)}, rec)
}

func TestSet_RejectsInvalidValuesWithoutMutation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		command string
		want    string
	}{
		{"#vv set pitch abc", "pitch 必须是数字"},
		{"#vv set speed -1", "speed 必须是正数"},
		{"#vv set speed 0", "speed 必须是正数"},
		{"#vv set speed fast", "speed 必须是正数"},
		{"#vv set intonation -2", "intonation 必须是正数"},
		{"#vv set pitch NaN", "pitch 必须是数字"},
		{"#vv set volume 3", "支持的参数：speaker, pitch, speed, intonation"},
		{"#vv set pitch", "用法：\n#vv set speaker <名称或ID>\n#vv set pitch <值>\n#vv set speed <值>\n#vv set intonation <值>"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			ctx := context.Background()
			stored := prefs.Record{Pitch: ptr(0.1), Speed: ptr(1.1)}
			require.True(t, f.prefs.Set(ctx, "42", stored))

			before, err := f.kv.Get(ctx, prefs.Key("42"))
			require.NoError(t, err)

			require.True(t, f.send(t, tt.command, false))
			assert.Equal(t, tt.want, f.surface.last())

			after, err := f.kv.Get(ctx, prefs.Key("42"))
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestGet_RendersAllAxes(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	require.True(t, f.send(t, "#vv get", false))
	assert.Equal(t, "您的个人偏好设置：\n说话人: 四国玫碳甜 (ID: 0)\n音调 (pitch): 0\n语调 (intonation): 1\n语速 (speed): 1", f.surface.last())

	require.True(t, f.prefs.Set(context.Background(), "42", prefs.Record{Speaker: ptr(3), Speed: ptr(1.25)}))

	require.True(t, f.send(t, "#vv get", false))
	assert.Equal(t, "您的个人偏好设置：\n说话人: 毛豆 (ID: 3)\n音调 (pitch): 0\n语调 (intonation): 1\n语速 (speed): 1.25", f.surface.last())
}

func TestGet_TrailingTextIsSpeech(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	require.True(t, f.send(t, "#vv get out", false))
	assert.Equal(t, 1, f.synth.calls)
	assert.Equal(t, "get out", f.synth.text)
}

func TestReset(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	require.True(t, f.prefs.Set(ctx, "42", prefs.Record{Speaker: ptr(3)}))

	require.True(t, f.send(t, "#vv reset", false))
	assert.Equal(t, "个人偏好已重置为默认配置", f.surface.last())
	assert.True(t, f.prefs.Get(ctx, "42").IsEmpty())

	_, err := f.kv.Get(ctx, prefs.Key("42"))
	require.ErrorIs(t, err, core.ErrKeyNotFound)
}

func TestList_Filtered(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	require.True(t, f.send(t, "#vv list 毛豆", false))

	reply := f.surface.last()
	assert.Contains(t, reply, "🔍 搜索\"毛豆\"的结果：")
	assert.Contains(t, reply, "• 毛豆甜 (ID: 1)")
	assert.Contains(t, reply, "• 毛豆 (ID: 3)")
	assert.Contains(t, reply, "共找到 12 个匹配项")
	assert.NotContains(t, reply, "年糕 (ID: 20)")
	assert.Contains(t, reply, "• #vv set speaker 毛豆甜")
}

func TestList_TermWithoutSpace(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	require.True(t, f.send(t, "#vv list毛豆", false))

	reply := f.surface.last()
	assert.Contains(t, reply, "🔍 搜索\"毛豆\"的结果：")
	assert.Contains(t, reply, "共找到 12 个匹配项")
	assert.Zero(t, f.synth.calls, "must not be spoken")
}

func TestList_ByID(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	require.True(t, f.send(t, "#vv list 3", false))
	assert.Contains(t, f.surface.last(), "• 毛豆 (ID: 3)")
}

func TestList_NotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	require.True(t, f.send(t, "#vv list zzz", false))
	assert.Equal(t, "未找到包含\"zzz\"的说话人\n使用 #vv list 查看完整列表", f.surface.last())
}

func TestList_OverviewIsCappedAndOrdered(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	require.True(t, f.send(t, "#vv list", false))

	reply := f.surface.last()
	groups := speaker.NewDefault().Groups()
	require.Greater(t, len(groups), 15)

	assert.Equal(t, 15, strings.Count(reply, "📢 "))
	assert.Contains(t, reply, "📢 四国玫碳 (0)")
	assert.Contains(t, reply, "📢 毛豆 (1) +11变体")
	assert.Less(t, strings.Index(reply, "📢 四国玫碳 (0)"), strings.Index(reply, "📢 毛豆 (1)"))
	assert.Contains(t, reply, "... 还有 ")
}

func TestHelp(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"#vv帮助", "vv帮助", "#vv help"} {
		t.Run(text, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)

			require.True(t, f.send(t, text, false))
			assert.Contains(t, f.surface.last(), "#cvv 文本 - 中文合成语音")
			assert.NotContains(t, f.surface.last(), "setkey")
			assert.Zero(t, f.synth.calls)

			require.True(t, f.send(t, text, true))
			assert.Contains(t, f.surface.last(), "#vv setkey <apiKey>")
		})
	}
}

func TestHandle_ConcurrentCommands(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			surface := &chatSurface{}
			f.router.Handle(context.Background(), command.Message{UserID: "7", Text: "#vv get"}, surface)
			assert.Len(t, surface.replies, 1)
		}()
	}

	wg.Wait()
}

func ptr[T any](v T) *T { return &v }
