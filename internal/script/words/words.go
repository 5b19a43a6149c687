// Package words generates readable names for new scripts and their
// scratch directories.
package words

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var Adjectives = []string{
	"active", "agile", "alert", "apt", "bright", "brisk", "calm", "capable", "clear",
	"clever", "confident", "cool", "crisp", "devoted", "diligent", "distinct", "dynamic",
	"eager", "effective", "efficient", "energetic", "exact", "fair", "fast", "firm", "flexible",
	"focused", "fresh", "global", "grand", "handy", "happy", "helpful", "ideal", "keen", "lively",
	"loyal", "master", "modern", "neat", "optimal", "original", "patient", "peak", "perfect",
	"planned", "polite", "potent", "precise", "prime", "prompt", "proud", "pure", "quick", "quiet",
	"rapid", "ready", "reliable", "robust", "secure", "sharp", "simple", "smart", "solid", "sound",
	"spare", "stable", "steady", "strong", "superb", "swift", "tactical", "technical", "tidy",
	"top", "true", "useful", "valid", "vital", "vivid", "warm", "wise", "whole", "willing",
}

var Nouns = []string{
	"agent", "anchor", "beacon", "bridge", "builder", "catalyst", "center", "cloud", "core",
	"data", "device", "driver", "element", "engine", "explorer", "field", "flow", "forge", "frame",
	"gateway", "grid", "guard", "handler", "helper", "hub", "interface", "kernel", "layer",
	"link", "manager", "mapper", "monitor", "network", "node", "observer", "operator", "panel",
	"parser", "pilot", "pointer", "portal", "processor", "provider", "reactor", "recorder",
	"reflector", "resolver", "router", "runner", "scanner", "scheduler", "sensor", "server",
	"signal", "source", "stream", "system", "tracker", "validator", "viewer", "worker",
}

const (
	MaxNameLength = 48
	ScriptExt     = ".yaml"
)

var (
	unsafeChars = regexp.MustCompile(`[^a-z0-9-]`)
	dashRuns    = regexp.MustCompile(`-+`)
)

// GenerateName returns a random adjective-noun pair joined by sep.
func GenerateName(sep string) string {
	bytes := make([]byte, 4)
	if _, err := cryptorand.Read(bytes); err != nil {
		return fmt.Sprintf("script%s%d%s%d", sep, time.Now().UnixNano()%100000, sep, os.Getpid()%1000)
	}

	adjIndex := int(binary.LittleEndian.Uint16(bytes[0:2])) % len(Adjectives)
	nounIndex := int(binary.LittleEndian.Uint16(bytes[2:4])) % len(Nouns)

	return Adjectives[adjIndex] + sep + Nouns[nounIndex]
}

// Sanitize lowercases name and reduces it to letters, digits and single
// dashes, capped at MaxNameLength.
func Sanitize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = unsafeChars.ReplaceAllString(name, "-")
	name = dashRuns.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if len(name) > MaxNameLength {
		name = strings.TrimRight(name[:MaxNameLength], "-")
	}
	return name
}

// ScriptFileName turns a user-supplied name into a script file name. An
// empty or unusable name is replaced by a generated one.
func ScriptFileName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	sanitized := Sanitize(base)
	if sanitized == "" {
		sanitized = GenerateName("-")
	}
	return sanitized + ScriptExt
}

// ScratchDirectory returns a directory under the system temp dir named
// after the script.
func ScratchDirectory(scriptName string) string {
	base := strings.TrimSuffix(scriptName, ScriptExt)
	return filepath.Join(os.TempDir(), "scriptrun-"+Sanitize(base))
}

// IsGenerated reports whether name has the adjective-noun shape produced
// by GenerateName with a dash separator.
func IsGenerated(name string) bool {
	parts := strings.Split(strings.TrimSuffix(name, ScriptExt), "-")
	if len(parts) != 2 {
		return false
	}
	return contains(Adjectives, parts[0]) && contains(Nouns, parts[1])
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
