// internal/core/domain/journal/steps.go
package journal

// Step - позиция мастера в анкете трейда
type Step int

const (
	StepMenu Step = iota // вне мастера (главное меню)
	StepInstrument
	StepSessionWindow
	StepMarketContext
	StepPOIQuality
	StepDeliveryStyle
	StepAnchorPoint
	StepTrigger
	StepConfirmationSignal
	StepEntryModel
	StepEntryTimeframe
	StepExitAnchor
	StepStopLossContext
	StepRiskReward
	StepReview
)

// StepInfo - описание одного шага анкеты. Таблица steps единственный
// источник порядка шагов: её используют и прямой проход, и переход
// из режима редактирования.
type StepInfo struct {
	Step     Step
	Key      string   // короткий ключ для callback data
	Field    string   // имя поля в черновике и свойства в Notion
	Prompt   string   // вопрос пользователю
	Options  []string // варианты ответа (пусто для свободного ввода)
	Multi    bool     // поле-набор, подтверждается кнопкой "Готово"
	FreeText bool     // числовой ввод текстом
}

var steps = []StepInfo{
	{
		Step:    StepInstrument,
		Key:     "pair",
		Field:   "Pair",
		Prompt:  "Pair?",
		Options: []string{"EURUSD", "GBPUSD", "XAUUSD", "US100", "BTCUSD"},
	},
	{
		Step:    StepSessionWindow,
		Key:     "session",
		Field:   "Session",
		Prompt:  "Session?",
		Options: []string{"Asia", "Frankfurt", "London", "New York"},
	},
	{
		Step:    StepMarketContext,
		Key:     "context",
		Field:   "Context",
		Prompt:  "Context?",
		Options: []string{"Trend", "Range", "Counter-trend"},
	},
	{
		Step:    StepPOIQuality,
		Key:     "testpoi",
		Field:   "Test POI",
		Prompt:  "Test POI?",
		Options: []string{"Fresh", "Tested", "Mitigated"},
	},
	{
		Step:    StepDeliveryStyle,
		Key:     "delivery",
		Field:   "Delivery to POI",
		Prompt:  "Delivery to POI?",
		Options: []string{"Fast", "Slow"},
	},
	{
		Step:    StepAnchorPoint,
		Key:     "pointa",
		Field:   "Point A",
		Prompt:  "Point A?",
		Options: []string{"Asia High/Low", "PDH/PDL", "Session High/Low", "Weekly High/Low"},
	},
	{
		Step:    StepTrigger,
		Key:     "trigger",
		Field:   "Trigger",
		Prompt:  "Trigger?",
		Options: []string{"Sweep", "SMT", "CHoCH", "BOS"},
		Multi:   true,
	},
	{
		Step:    StepConfirmationSignal,
		Key:     "vc",
		Field:   "VC",
		Prompt:  "VC?",
		Options: []string{"FVG", "OB", "Breaker", "Imbalance Fill"},
		Multi:   true,
	},
	{
		Step:    StepEntryModel,
		Key:     "entrymodel",
		Field:   "Entry model",
		Prompt:  "Entry model?",
		Options: []string{"Limit", "Market", "CHoCH Entry", "FVG Entry"},
	},
	{
		Step:    StepEntryTimeframe,
		Key:     "entrytf",
		Field:   "Entry TF",
		Prompt:  "Entry TF?",
		Options: []string{"1m", "3m", "5m", "15m"},
	},
	{
		Step:    StepExitAnchor,
		Key:     "pointb",
		Field:   "Point B",
		Prompt:  "Point B?",
		Options: []string{"PDH/PDL", "Liquidity Pool", "Imbalance", "Opposite POI"},
	},
	{
		Step:    StepStopLossContext,
		Key:     "slposition",
		Field:   "SL Position",
		Prompt:  "SL Position?",
		Options: []string{"Above POI", "Below POI", "Sweep Extreme", "Structure"},
	},
	{
		Step:     StepRiskReward,
		Key:      "rr",
		Field:    "RR",
		Prompt:   "Введіть RR (наприклад, 2.5):",
		FreeText: true,
	},
}

// Steps возвращает шаги в прямом порядке
func Steps() []StepInfo {
	return steps
}

// First возвращает первый шаг анкеты
func First() Step {
	return steps[0].Step
}

// Last возвращает последний шаг анкеты
func Last() Step {
	return steps[len(steps)-1].Step
}

// Info возвращает описание шага
func Info(s Step) (StepInfo, bool) {
	for _, info := range steps {
		if info.Step == s {
			return info, true
		}
	}
	return StepInfo{}, false
}

// ByKey находит шаг по короткому ключу из callback data
func ByKey(key string) (StepInfo, bool) {
	for _, info := range steps {
		if info.Key == key {
			return info, true
		}
	}
	return StepInfo{}, false
}

// ByField находит шаг по имени поля
func ByField(field string) (StepInfo, bool) {
	for _, info := range steps {
		if info.Field == field {
			return info, true
		}
	}
	return StepInfo{}, false
}

// Next возвращает следующий шаг; после последнего шага - StepReview
func Next(s Step) (Step, bool) {
	for i, info := range steps {
		if info.Step == s {
			if i+1 < len(steps) {
				return steps[i+1].Step, true
			}
			return StepReview, true
		}
	}
	return StepMenu, false
}

// Prev возвращает предыдущий шаг; false на первом
func Prev(s Step) (Step, bool) {
	if s == StepReview {
		return steps[len(steps)-1].Step, true
	}
	for i, info := range steps {
		if info.Step == s {
			if i > 0 {
				return steps[i-1].Step, true
			}
			return s, false
		}
	}
	return StepMenu, false
}

// Fields возвращает имена всех полей анкеты в порядке шагов
func Fields() []string {
	fields := make([]string, 0, len(steps))
	for _, info := range steps {
		fields = append(fields, info.Field)
	}
	return fields
}

// IsWizard сообщает, находится ли позиция внутри анкеты
func IsWizard(s Step) bool {
	_, ok := Info(s)
	return ok
}
