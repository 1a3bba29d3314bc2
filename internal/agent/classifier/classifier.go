package classifier

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"packtrace/internal/agent/config"
	"packtrace/internal/models"
)

// rule is one compiled classification pattern.
type rule struct {
	eventType string
	pattern   *regexp.Regexp
}

// Classifier turns raw scanned strings into typed scan events and tracks the
// in-progress order between an order-start scan and a completion scan.
// Classify may be called from the scan input goroutine while other
// goroutines read nothing from it, so only the session slot is guarded.
type Classifier struct {
	stationUID     string
	rules          []rule
	orderType      string
	completionType string
	meta           *models.StationMeta
	now            func() time.Time

	mu           sync.Mutex
	currentOrder string // empty outside an order session
}

// New compiles the station's ordered pattern rules. The rule order is a
// contract: the first matching pattern decides the event type.
func New(cfg *config.Config, meta *models.StationMeta) (*Classifier, error) {
	rules := make([]rule, 0, len(cfg.BarcodePatterns))
	for i, r := range cfg.BarcodePatterns {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compile barcode pattern %d (%s): %w", i, r.Type, err)
		}
		rules = append(rules, rule{
			eventType: strings.ToUpper(strings.TrimSpace(r.Type)),
			pattern:   re,
		})
	}
	return &Classifier{
		stationUID:     cfg.StationUID,
		rules:          rules,
		orderType:      strings.ToUpper(cfg.OrderType),
		completionType: strings.ToUpper(cfg.CompletionType),
		meta:           meta,
		now:            time.Now,
	}, nil
}

// Classify matches raw against the rules and returns the typed event, or nil
// when no pattern matches (the caller logs and discards). An order-type scan
// opens the order session; a completion-type scan still carries the current
// order number and clears the session after the event is built.
func (c *Classifier) Classify(raw string) *models.ScanEvent {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	eventType := c.matchType(raw)
	if eventType == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if eventType == c.orderType {
		c.currentOrder = raw
	}

	ev := &models.ScanEvent{
		StationUID:   c.stationUID,
		EventType:    eventType,
		OrderNo:      c.currentOrder,
		BarcodeValue: raw,
		CapturedAt:   c.now().UTC(),
		StationMeta:  c.meta,
	}

	// The completion event belongs to the order it closes.
	if eventType == c.completionType {
		c.currentOrder = ""
	}

	return ev
}

// CurrentOrder returns the active order number, or "" outside a session.
func (c *Classifier) CurrentOrder() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentOrder
}

func (c *Classifier) matchType(raw string) string {
	for _, r := range c.rules {
		if r.pattern.MatchString(raw) {
			return r.eventType
		}
	}
	return ""
}
