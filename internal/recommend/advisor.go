// Package recommend подбирает вкус дня через Gemini с запасными ответами.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

const (
	DefaultMood    = "Happy"
	DefaultWeather = "Sunny"

	// Placeholder отдаётся, пока первая подсказка ещё не получена
	Placeholder = "The kampung spirits are deciding on your treat..."
	// WarmupFallback используется, если прогрев не удался
	WarmupFallback = "Panas terik today! Grab a cooling Watermelon stick, just like when we used to lepak after school. Shiok!"
)

var Fallbacks = []string{
	"The kampung spirits recommend: A juicy Watermelon stick for these sunny vibes!",
	"Nostalgia is calling! How about a creamy Chocolate lolly today?",
	"Feeling lucky? Our Durian lollies are the talk of the neighborhood!",
	"Cool down with our signature Vanilla Blue – a childhood favorite!",
}

var menu = []string{
	"Watermelon", "Brown Sugar Milk Tea", "Hazelnut Coffee", "Vanilla Blue",
	"Bubblegum", "Chocolate", "Honeydew", "Durian",
}

// Generator - источник текста, в проде это GeminiClient
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Advisor struct {
	log     *slog.Logger
	gen     Generator
	timeout time.Duration
	clock   func() time.Time

	mu      sync.RWMutex
	current string
	warmed  bool
}

// NewAdvisor. clock должен отдавать время в часовом поясе магазина.
func NewAdvisor(log *slog.Logger, gen Generator, timeout time.Duration, clock func() time.Time) *Advisor {
	if clock == nil {
		clock = time.Now
	}
	return &Advisor{
		log:     log,
		gen:     gen,
		timeout: timeout,
		clock:   clock,
		current: Placeholder,
	}
}

// TimeBucket: с 22:00 до 04:59 - "Late at Night", иначе "Daytime"
func TimeBucket(t time.Time) string {
	if h := t.Hour(); h >= 22 || h < 5 {
		return "Late at Night"
	}
	return "Daytime"
}

func BuildPrompt(mood, weather, bucket string) string {
	return fmt.Sprintf(
		"You are a friendly assistant for a home-based business in Singapore selling Air Batu Malaysia (ice lollies). "+
			"The customer's mood is %s, the weather is %s and it is %s. "+
			"Recommend ONE flavour from our menu: %s. "+
			"Give a nostalgic one-sentence 'Kampung' style reason. "+
			"Mention that Sarsi is coming soon.",
		mood, weather, bucket, strings.Join(menu, ", "),
	)
}

// Recommend никогда не возвращает ошибку: при любом сбое отдаётся запасная фраза
func (a *Advisor) Recommend(ctx context.Context, mood, weather string) string {
	const op = "recommend.Advisor.Recommend"
	logger := a.log.With(slog.String("op", op))

	if mood == "" {
		mood = DefaultMood
	}
	if weather == "" {
		weather = DefaultWeather
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.gen.Generate(ctx, BuildPrompt(mood, weather, TimeBucket(a.clock())))
	if err != nil {
		logger.Warn("recommendation failed, using fallback", slog.Any("error", err))
		return Fallbacks[rand.IntN(len(Fallbacks))]
	}
	return text
}

// Warmup один раз запрашивает подсказку для настроения по умолчанию после задержки.
// Блокирует до завершения, вызывать в отдельной горутине.
func (a *Advisor) Warmup(ctx context.Context, delay time.Duration) {
	const op = "recommend.Advisor.Warmup"
	logger := a.log.With(slog.String("op", op))

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.gen.Generate(callCtx, BuildPrompt(DefaultMood, DefaultWeather, TimeBucket(a.clock())))
	if err != nil {
		logger.Warn("warmup failed, using fallback", slog.Any("error", err))
		text = WarmupFallback
	}

	a.mu.Lock()
	a.current = text
	a.warmed = true
	a.mu.Unlock()
	logger.Info("recommendation warmed up")
}

// Current возвращает прогретую подсказку или Placeholder
func (a *Advisor) Current() (text string, ready bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current, a.warmed
}
