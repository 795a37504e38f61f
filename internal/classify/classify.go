// Package classify decides which sensors carry CPU/GPU telemetry.
//
// The producer publishes no sensor category, so relevance is a keyword
// heuristic over the two sensor names. False positives and negatives are
// possible.
package classify

import (
	"strings"

	"github.com/ghalamif/SensorFlow/internal/domain"
)

// Keywords are matched case-insensitively as substrings.
var Keywords = []string{
	"CPU", "Core", "Package", "Clock", "Frequency", "Usage",
	"Utilization", "Processor", "Load", "Temp", "Power", "Total", "Used",
}

var lowerKeywords = func() []string {
	out := make([]string, len(Keywords))
	for i, k := range Keywords {
		out[i] = strings.ToLower(k)
	}
	return out
}()

// IsRelevant reports whether either name contains a keyword.
func IsRelevant(nameOrig, nameUser string) bool {
	return containsKeyword(nameUser) || containsKeyword(nameOrig)
}

// Sensor applies IsRelevant to a sensor's two names.
func Sensor(s domain.SensorDescriptor) bool {
	return IsRelevant(s.NameOrig, s.NameUser)
}

func containsKeyword(name string) bool {
	if name == "" {
		return false
	}
	name = strings.ToLower(name)
	for _, k := range lowerKeywords {
		if strings.Contains(name, k) {
			return true
		}
	}
	return false
}
