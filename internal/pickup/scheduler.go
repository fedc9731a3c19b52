// Package pickup считает слоты самовывоза на сегодня.
package pickup

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/linemk/airbatu-shop/internal/config"
)

const minutesPerDay = 24 * 60

var (
	ErrInvalidTimeOfDay = errors.New("invalid time of day")
	ErrInvalidLabel     = errors.New("invalid slot label")
)

// Slot - метка слота в 12-часовом формате, например "07:30 PM"
type Slot string

// TimeOfDay - минуты от полуночи
type TimeOfDay int

// ParseTimeOfDay разбирает время в формате "HH:MM" (24 часа). "24:00" допустимо как конец дня.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(strings.TrimSpace(s), "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	if h < 0 || m < 0 || m > 59 || h*60+m > minutesPerDay {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) Hour() int   { return int(t) / 60 }
func (t TimeOfDay) Minute() int { return int(t) % 60 }

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// FormatLabel переводит внутреннее 24-часовое время в метку слота.
// Часы 0 и 12 выводятся как "12", конец дня "24:00" - как "12:00 AM".
func FormatLabel(t TimeOfDay) Slot {
	hour := t.Hour() % 24
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	h := hour % 12
	if h == 0 {
		h = 12
	}
	return Slot(fmt.Sprintf("%02d:%02d %s", h, t.Minute(), suffix))
}

// ParseLabel - обратное преобразование для FormatLabel
func ParseLabel(s Slot) (TimeOfDay, error) {
	var h, m int
	var suffix string
	if _, err := fmt.Sscanf(string(s), "%d:%d %s", &h, &m, &suffix); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLabel, s)
	}
	if h < 1 || h > 12 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLabel, s)
	}
	h %= 12
	switch suffix {
	case "AM":
	case "PM":
		h += 12
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidLabel, s)
	}
	return TimeOfDay(h*60 + m), nil
}

// AvailableSlots возвращает слоты самовывоза на тот же день.
// Самый ранний слот - now+prepBuffer, округлённый вверх до шага и не раньше открытия.
// Закрытие включается. Если now не раньше закрытия - пустой список: заказы на сегодня закрыты.
func AvailableSlots(now time.Time, shopOpen, shopClose TimeOfDay, prepBuffer, step time.Duration) []Slot {
	stepMin := int(step / time.Minute)
	if stepMin <= 0 {
		return nil
	}

	nowMin := minuteOfDay(now)
	if nowMin >= int(shopClose) {
		return nil
	}

	earliest, sameDay := ceilWallMinute(now.Add(prepBuffer), now)
	if !sameDay {
		return nil
	}
	start := roundUp(earliest, stepMin)
	if start < int(shopOpen) {
		start = int(shopOpen)
	}

	var slots []Slot
	seen := make(map[Slot]struct{})
	for m := start; m <= int(shopClose) && m < minutesPerDay; m += stepMin {
		label := FormatLabel(TimeOfDay(m))
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		slots = append(slots, label)
	}
	return slots
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// ceilWallMinute возвращает минуты t по часам магазина, округляя секунды вверх.
// sameDay=false, если t приходится на другой календарный день, чем base.
// Минуты берутся с циферблата, а не от полуночи: в дни перевода часов они расходятся.
func ceilWallMinute(t, base time.Time) (minute int, sameDay bool) {
	ty, tm, td := t.Date()
	by, bm, bd := base.Date()
	if ty != by || tm != bm || td != bd {
		return 0, false
	}
	minute = minuteOfDay(t)
	if t.Second() > 0 || t.Nanosecond() > 0 {
		minute++
	}
	return minute, true
}

func roundUp(v, step int) int {
	if r := v % step; r != 0 {
		return v + step - r
	}
	return v
}

// Scheduler хранит часы работы магазина и часы для расчёта слотов
type Scheduler struct {
	opens      TimeOfDay
	closes     TimeOfDay
	prepBuffer time.Duration
	step       time.Duration
	loc        *time.Location
	clock      func() time.Time
}

// NewScheduler проверяет настройки магазина и загружает его часовой пояс
func NewScheduler(cfg config.ShopConfig) (*Scheduler, error) {
	const op = "pickup.NewScheduler"

	opens, err := ParseTimeOfDay(cfg.OpensAt)
	if err != nil {
		return nil, fmt.Errorf("%s: opens_at: %w", op, err)
	}
	closes, err := ParseTimeOfDay(cfg.ClosesAt)
	if err != nil {
		return nil, fmt.Errorf("%s: closes_at: %w", op, err)
	}
	if opens >= closes {
		return nil, fmt.Errorf("%s: shop must open before it closes (%s >= %s)", op, opens, closes)
	}
	if cfg.SlotStep < time.Minute {
		return nil, fmt.Errorf("%s: slot step must be at least one minute", op)
	}
	if cfg.PrepBuffer < 0 {
		return nil, fmt.Errorf("%s: prep buffer must not be negative", op)
	}

	loc := time.Local
	if cfg.Timezone != "" {
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("%s: load timezone: %w", op, err)
		}
	}

	return &Scheduler{
		opens:      opens,
		closes:     closes,
		prepBuffer: cfg.PrepBuffer,
		step:       cfg.SlotStep,
		loc:        loc,
		clock:      time.Now,
	}, nil
}

// WithClock подменяет источник времени (для тестов)
func (s *Scheduler) WithClock(clock func() time.Time) *Scheduler {
	s.clock = clock
	return s
}

// Now - текущее время в часовом поясе магазина
func (s *Scheduler) Now() time.Time {
	return s.clock().In(s.loc)
}

// Slots пересчитывается при каждом вызове, кэша нет
func (s *Scheduler) Slots() []Slot {
	return AvailableSlots(s.Now(), s.opens, s.closes, s.prepBuffer, s.step)
}

// Offered сообщает, входит ли метка в текущий набор слотов
func (s *Scheduler) Offered(slot Slot) bool {
	for _, candidate := range s.Slots() {
		if candidate == slot {
			return true
		}
	}
	return false
}

func (s *Scheduler) Opens() TimeOfDay  { return s.opens }
func (s *Scheduler) Closes() TimeOfDay { return s.closes }
