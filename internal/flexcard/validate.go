package flexcard

import (
	"encoding/json"
	"fmt"
	"regexp"
	"unicode/utf8"
)

const (
	// MaxPayloadBytes is the platform limit for a serialized card.
	MaxPayloadBytes = 5000
	// MaxBoxDepth is the deepest Box nesting the platform accepts.
	MaxBoxDepth = 3
	// MaxAltTextRunes bounds the accessibility text.
	MaxAltTextRunes = 400
)

var (
	colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

	validSizes = map[string]bool{
		"xxs": true, "xs": true, "sm": true, "md": true, "lg": true,
		"xl": true, "xxl": true, "3xl": true, "4xl": true, "5xl": true,
	}
	validWeights = map[string]bool{"regular": true, "bold": true}
	validLayouts = map[string]bool{"horizontal": true, "vertical": true}
	validStyles  = map[string]bool{"primary": true, "secondary": true, "link": true}
	validActions = map[string]bool{"postback": true, "uri": true, "message": true}
)

// Validate checks the card against the platform schema: structural tags,
// closed token sets, color format, box depth, alt-text bounds and total
// serialized size.
func Validate(card Card) error {
	if card.AltText == "" {
		return fmt.Errorf("flexcard: altText is empty")
	}
	if utf8.RuneCountInString(card.AltText) > MaxAltTextRunes {
		return fmt.Errorf("flexcard: altText exceeds %d characters", MaxAltTextRunes)
	}
	if card.Contents.Body == nil || len(card.Contents.Body.Contents) == 0 {
		return fmt.Errorf("flexcard: bubble body is empty")
	}
	for name, box := range map[string]*Box{
		"header": card.Contents.Header,
		"body":   card.Contents.Body,
		"footer": card.Contents.Footer,
	} {
		if box == nil {
			continue
		}
		if err := validateBox(*box, 1); err != nil {
			return fmt.Errorf("flexcard: %s: %w", name, err)
		}
	}

	raw, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("flexcard: marshal: %w", err)
	}
	if len(raw) > MaxPayloadBytes {
		return fmt.Errorf("flexcard: payload %d bytes exceeds %d", len(raw), MaxPayloadBytes)
	}
	return nil
}

func validateBox(box Box, depth int) error {
	if depth > MaxBoxDepth {
		return fmt.Errorf("box nesting depth %d exceeds %d", depth, MaxBoxDepth)
	}
	if !validLayouts[box.Layout] {
		return fmt.Errorf("invalid box layout %q", box.Layout)
	}
	if err := validColor(box.BackgroundColor); err != nil {
		return err
	}
	for _, el := range box.Contents {
		switch v := el.(type) {
		case Text:
			if v.Text == "" {
				return fmt.Errorf("text element is empty")
			}
			if v.Size != "" && !validSizes[v.Size] {
				return fmt.Errorf("invalid text size %q", v.Size)
			}
			if v.Weight != "" && !validWeights[v.Weight] {
				return fmt.Errorf("invalid text weight %q", v.Weight)
			}
			if err := validColor(v.Color); err != nil {
				return err
			}
		case Button:
			if v.Style != "" && !validStyles[v.Style] {
				return fmt.Errorf("invalid button style %q", v.Style)
			}
			if !validActions[v.Action.Type] {
				return fmt.Errorf("invalid action type %q", v.Action.Type)
			}
			if v.Action.Label == "" {
				return fmt.Errorf("button label is empty")
			}
		case Separator:
			// nothing to check
		case Box:
			if err := validateBox(v, depth+1); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown element %T", el)
		}
	}
	return nil
}

func validColor(c string) error {
	if c == "" {
		return nil
	}
	if !colorPattern.MatchString(c) {
		return fmt.Errorf("invalid color %q", c)
	}
	return nil
}

// Flatten lifts the contents of boxes nested deeper than MaxBoxDepth into
// their parent so the tree never exceeds the platform limit.
func Flatten(box Box) Box {
	return flattenAt(box, 1)
}

func flattenAt(box Box, depth int) Box {
	out := Box{
		Layout:          box.Layout,
		BackgroundColor: box.BackgroundColor,
		PaddingAll:      box.PaddingAll,
		CornerRadius:    box.CornerRadius,
	}
	for _, el := range box.Contents {
		child, ok := el.(Box)
		if !ok {
			out.Contents = append(out.Contents, el)
			continue
		}
		if depth+1 > MaxBoxDepth {
			// Too deep for a box child: splice its leaves into this level.
			flattened := flattenAt(child, depth)
			out.Contents = append(out.Contents, flattened.Contents...)
			continue
		}
		out.Contents = append(out.Contents, flattenAt(child, depth+1))
	}
	return out
}
