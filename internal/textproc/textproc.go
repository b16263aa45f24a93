package textproc

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"incident-verifier/internal/verify"
)

// Per-format parse confidences for extracted dates. Numeric and fully
// spelled dates parse unambiguously; bare years barely narrow anything down.
const (
	numericDateConfidence  = 0.95
	monthDayYearConfidence = 0.95
	relativeConfidence     = 0.90
	monthYearConfidence    = 0.80
	bareYearConfidence     = 0.60

	maxKeywords = 15
)

// eventLexicons maps an event type to the words that indicate it.
var eventLexicons = map[string][]string{
	"fire":       {"fire", "burning", "blaze", "flames", "smoke", "arson"},
	"flood":      {"flood", "flooding", "submerged", "deluge", "inundation", "rain", "storm"},
	"accident":   {"accident", "crash", "collision", "wreck", "mishap"},
	"protest":    {"protest", "demonstration", "rally", "march", "agitation"},
	"explosion":  {"explosion", "blast", "detonation", "explode", "bomb"},
	"earthquake": {"earthquake", "tremor", "seismic", "quake"},
	"cyclone":    {"cyclone", "hurricane", "typhoon"},
	"violence":   {"shooting", "attack", "violence", "stabbing", "assault"},
	"rescue":     {"rescue", "emergency", "relief", "evacuation"},
}

// damageWords are severity adjectives worth keeping as keywords even though
// they are not event indicators.
var damageWords = []string{
	"severe", "heavy", "major", "massive", "widespread",
	"extensive", "catastrophic", "devastating",
}

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"from": {}, "as": {}, "is": {}, "was": {}, "are": {}, "were": {},
	"been": {}, "be": {}, "have": {}, "has": {}, "had": {}, "do": {},
	"does": {}, "did": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "may": {}, "might": {}, "can": {}, "this": {},
	"that": {}, "these": {}, "those": {}, "it": {}, "its": {},
	"they": {}, "them": {}, "their": {},
}

// knownLocations covers the cities and regions incident reports in our
// corpus most often name.
var knownLocations = []string{
	"chennai", "mumbai", "delhi", "bangalore", "kolkata", "hyderabad",
	"pune", "ahmedabad", "jaipur", "lucknow", "kanpur", "nagpur",
	"jakarta", "manila", "dhaka", "karachi",
	"tamil nadu", "maharashtra", "karnataka", "kerala", "gujarat",
	"rajasthan", "uttar pradesh", "madhya pradesh", "west bengal",
}

// relativeTerms map a relative time expression to its day offset from now.
var relativeTerms = map[string]int{
	"today": 0, "tonight": 0, "now": 0, "currently": 0, "breaking": 0,
	"this morning": 0,
	"yesterday": -1, "last night": -1,
}

var monthNumbers = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "jun": time.June, "jul": time.July,
	"aug": time.August, "sep": time.September, "oct": time.October,
	"nov": time.November, "dec": time.December,
}

var (
	numericDatePattern  = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4})\b`)
	monthDayYearPattern = regexp.MustCompile(`\b([a-z]+)\s+(\d{1,2}),?\s+(\d{4})\b`)
	monthYearPattern    = regexp.MustCompile(`\b([a-z]+)\s+(\d{4})\b`)
	bareYearPattern     = regexp.MustCompile(`\b(20\d{2})\b`)
	wordPattern         = regexp.MustCompile(`\b\w+\b`)
)

// Processor extracts keywords, location, event type, and claimed dates from
// free-form incident text. Stateless and safe for concurrent use.
type Processor struct {
	now func() time.Time
}

// NewProcessor creates a text processor.
func NewProcessor() *Processor {
	return &Processor{now: time.Now}
}

// Process extracts all structured signal from the text. It never fails; text
// with nothing extractable yields an empty-but-valid signal.
func (p *Processor) Process(text string) verify.TextSignal {
	lowered := strings.ToLower(text)

	return verify.TextSignal{
		RawText:      text,
		Keywords:     p.extractKeywords(lowered),
		Location:     p.extractLocation(lowered),
		EventType:    p.classifyEventType(lowered),
		ClaimedDates: p.extractDates(lowered),
	}
}

// BuildSearchQuery assembles a retrieval query: location, event type, the
// strongest extracted date, and the top keywords.
func (p *Processor) BuildSearchQuery(signal verify.TextSignal) string {
	var parts []string

	if signal.Location != "" {
		parts = append(parts, signal.Location)
	}
	if signal.EventType != "" {
		parts = append(parts, signal.EventType)
	}

	var best *verify.ClaimedDate
	for i := range signal.ClaimedDates {
		candidate := &signal.ClaimedDates[i]
		if best == nil || candidate.Confidence > best.Confidence {
			best = candidate
		}
	}
	if best != nil {
		parts = append(parts, best.Date.Format("January 2006"))
	}

	for _, keyword := range signal.Keywords {
		if len(parts) >= 6 {
			break
		}
		duplicate := false
		for _, existing := range parts {
			if strings.EqualFold(existing, keyword) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			parts = append(parts, keyword)
		}
	}

	return strings.Join(parts, " ")
}

func (p *Processor) extractKeywords(lowered string) []string {
	var keywords []string
	seen := map[string]struct{}{}

	add := func(word string) {
		if _, ok := seen[word]; ok || len(keywords) >= maxKeywords {
			return
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}

	for _, eventType := range sortedLexiconKeys() {
		for _, word := range eventLexicons[eventType] {
			if strings.Contains(lowered, word) {
				add(word)
			}
		}
	}

	for _, word := range wordPattern.FindAllString(lowered, -1) {
		if len(word) <= 3 {
			continue
		}
		if _, stop := stopwords[word]; stop {
			continue
		}
		if _, err := strconv.Atoi(word); err == nil {
			continue
		}
		add(word)
	}

	for _, word := range damageWords {
		if strings.Contains(lowered, word) {
			add(word)
		}
	}

	return keywords
}

func (p *Processor) extractLocation(lowered string) string {
	for _, location := range knownLocations {
		if strings.Contains(lowered, location) {
			return titleCase(location)
		}
	}
	return ""
}

func (p *Processor) classifyEventType(lowered string) string {
	bestType := "incident"
	bestScore := 0

	// Deterministic iteration so ties always resolve the same way.
	for _, eventType := range sortedLexiconKeys() {
		score := 0
		for _, word := range eventLexicons[eventType] {
			if strings.Contains(lowered, word) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestType = eventType
		}
	}

	return bestType
}

// extractDates finds every date mention, highest-confidence formats first.
// Spans already consumed by a stronger format are not re-extracted by a
// weaker one.
func (p *Processor) extractDates(lowered string) []verify.ClaimedDate {
	var dates []verify.ClaimedDate
	consumed := map[string]struct{}{}

	appendDate := func(date time.Time, confidence float64, span string) {
		if _, ok := consumed[span]; ok {
			return
		}
		consumed[span] = struct{}{}
		dates = append(dates, verify.ClaimedDate{
			Date:       date,
			Confidence: confidence,
			SourceSpan: span,
		})
	}

	for _, match := range numericDatePattern.FindAllStringSubmatch(lowered, -1) {
		day, _ := strconv.Atoi(match[1])
		month, _ := strconv.Atoi(match[2])
		year, _ := strconv.Atoi(match[3])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}
		appendDate(
			time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC),
			numericDateConfidence, match[0])
		consumed[match[3]] = struct{}{}
	}

	for _, match := range monthDayYearPattern.FindAllStringSubmatch(lowered, -1) {
		month, ok := monthNumbers[match[1]]
		if !ok {
			continue
		}
		day, _ := strconv.Atoi(match[2])
		year, _ := strconv.Atoi(match[3])
		if day < 1 || day > 31 {
			continue
		}
		appendDate(
			time.Date(year, month, day, 0, 0, 0, 0, time.UTC),
			monthDayYearConfidence, match[0])
		consumed[match[1]+" "+match[3]] = struct{}{}
		consumed[match[3]] = struct{}{}
	}

	for term, offset := range relativeTerms {
		if strings.Contains(lowered, term) {
			appendDate(p.now().AddDate(0, 0, offset).Truncate(24*time.Hour), relativeConfidence, term)
		}
	}

	for _, match := range monthYearPattern.FindAllStringSubmatch(lowered, -1) {
		month, ok := monthNumbers[match[1]]
		if !ok {
			continue
		}
		year, _ := strconv.Atoi(match[2])
		appendDate(
			time.Date(year, month, 1, 0, 0, 0, 0, time.UTC),
			monthYearConfidence, match[0])
		consumed[match[2]] = struct{}{}
	}

	for _, match := range bareYearPattern.FindAllStringSubmatch(lowered, -1) {
		year, _ := strconv.Atoi(match[1])
		appendDate(
			time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			bareYearConfidence, match[0])
	}

	return dates
}

func sortedLexiconKeys() []string {
	return []string{
		"accident", "cyclone", "earthquake", "explosion", "fire",
		"flood", "protest", "rescue", "violence",
	}
}

func titleCase(value string) string {
	words := strings.Fields(value)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
