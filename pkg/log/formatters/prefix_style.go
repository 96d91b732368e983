package formatters

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

var (
	// defaultPrefixStyles contains ANSI color codes that are assigned sequentially to each unique prefix in a rotating order
	// https://www.hackitu.de/termcolor256/
	defaultPrefixStyles = []ColorStyle{
		"66", "67", "95", "96", "102", "103", "108", "109", "139", "138", "144", "145",
	}

	// prefixStyle implements PrefixStyle
	_ PrefixStyle = new(prefixStyle)
)

type PrefixStyle interface {
	// ColorFunc creates a closure to avoid computation ANSI color code.
	ColorFunc(prefixName string) ColorFunc
}

type prefixStyle struct {
	// cache stores prefixes with their color schemes.
	cache *xsync.MapOf[string, ColorFunc]

	availableStyles []ColorStyle

	// nextStyleIndex is used to get the next style from the `defaultPrefixStyles` list for a newly discovered prefix.
	nextStyleIndex int
	mu             sync.Mutex
}

func NewPrefixStyle() *prefixStyle {
	return &prefixStyle{
		cache:           xsync.NewMapOf[string, ColorFunc](),
		availableStyles: defaultPrefixStyles,
	}
}

func (prefix *prefixStyle) ColorFunc(prefixName string) ColorFunc {
	if colorFunc, ok := prefix.cache.Load(prefixName); ok {
		return colorFunc
	}

	prefix.mu.Lock()
	defer prefix.mu.Unlock()

	if prefix.nextStyleIndex >= len(prefix.availableStyles) {
		prefix.nextStyleIndex = 0
	}

	colorFunc, _ := prefix.cache.LoadOrStore(prefixName, prefix.availableStyles[prefix.nextStyleIndex].ColorFunc())

	prefix.nextStyleIndex++

	return colorFunc
}
