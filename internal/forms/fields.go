// Package forms turns a game's server-defined validation field names into
// renderable inputs.
package forms

import (
	"strings"
	"unicode"

	"github.com/hongminglow/all-in-store/internal/models"
)

// Kind is the input control used for a field.
type Kind string

const (
	KindText   Kind = "text"
	KindNumber Kind = "number"
	KindSelect Kind = "select"
)

// Field is one rendered identity input.
type Field struct {
	Name        string
	Label       string
	Kind        Kind
	Placeholder string
	Value       string
	Options     []models.Region
}

type definition struct {
	label       string
	kind        Kind
	placeholder string
}

var definitions = map[string]definition{
	"playerId":  {label: "Player ID", kind: KindNumber, placeholder: "Enter your player ID"},
	"player_id": {label: "Player ID", kind: KindNumber, placeholder: "Enter your player ID"},
	"userId":    {label: "User ID", kind: KindNumber, placeholder: "Enter your user ID"},
	"user_id":   {label: "User ID", kind: KindNumber, placeholder: "Enter your user ID"},
	"uid":       {label: "UID", kind: KindNumber, placeholder: "Enter your UID"},
	"riotId":    {label: "Riot ID", kind: KindText, placeholder: "Name#TAG"},
	"username":  {label: "Username", kind: KindText, placeholder: "Enter your in-game username"},
	"server":    {label: "Server", kind: KindText, placeholder: "Enter your server"},
	"serverId":  {label: "Server ID", kind: KindNumber, placeholder: "Enter your server ID"},
	"server_id": {label: "Server ID", kind: KindNumber, placeholder: "Enter your server ID"},
	"zoneId":    {label: "Zone ID", kind: KindNumber, placeholder: "Enter your zone ID"},
	"zone_id":   {label: "Zone ID", kind: KindNumber, placeholder: "Enter your zone ID"},
	"region":    {label: "Region", kind: KindText, placeholder: "Enter your region"},
}

var serverLike = map[string]bool{
	"server":    true,
	"serverId":  true,
	"server_id": true,
	"zoneId":    true,
	"zone_id":   true,
	"region":    true,
}

// IsServerLike reports whether name identifies a server/region field.
func IsServerLike(name string) bool {
	return serverLike[name]
}

// Render returns exactly one field per entry of game.ValidationFields,
// prefilled from values.
func Render(game models.Game, values map[string]string) []Field {
	fields := make([]Field, 0, len(game.ValidationFields))
	for _, name := range game.ValidationFields {
		def, ok := definitions[name]
		if !ok {
			label := FormatName(name)
			def = definition{label: label, kind: KindText, placeholder: "Enter " + strings.ToLower(label)}
		}
		f := Field{
			Name:        name,
			Label:       def.label,
			Kind:        def.kind,
			Placeholder: def.placeholder,
			Value:       values[name],
		}
		if IsServerLike(name) && len(game.RegionList) > 0 {
			f.Kind = KindSelect
			f.Options = game.RegionList
		}
		fields = append(fields, f)
	}
	return fields
}

// Resolve maps submitted form values onto the game's validation fields.
// Select values are normalised to the region code; when the lookup fails the
// raw value is forwarded so user input is never dropped.
func Resolve(game models.Game, submitted map[string]string) map[string]string {
	out := make(map[string]string, len(game.ValidationFields))
	for _, name := range game.ValidationFields {
		raw := strings.TrimSpace(submitted[name])
		if IsServerLike(name) && len(game.RegionList) > 0 {
			raw = regionCode(game.RegionList, raw)
		}
		out[name] = raw
	}
	return out
}

func regionCode(list []models.Region, raw string) string {
	for _, r := range list {
		if r.Code == raw {
			return r.Code
		}
	}
	for _, r := range list {
		if strings.EqualFold(r.Name, raw) {
			return r.Code
		}
	}
	return raw
}

// Missing returns the labels of fields that have no value, in field order.
func Missing(game models.Game, values map[string]string) []string {
	var missing []string
	for _, f := range Render(game, nil) {
		if strings.TrimSpace(values[f.Name]) == "" {
			missing = append(missing, f.Label)
		}
	}
	return missing
}

// FormatName turns a raw field name into a label: "player_id" and
// "playerId" both become "Player Id".
func FormatName(name string) string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			flush()
		case unicode.IsUpper(r) && i > 0 && !unicode.IsUpper(runes[i-1]):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()

	for i, w := range words {
		rs := []rune(strings.ToLower(w))
		rs[0] = unicode.ToUpper(rs[0])
		words[i] = string(rs)
	}
	return strings.Join(words, " ")
}
