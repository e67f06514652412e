package simulation

import (
	"fmt"

	"github.com/yourusername/derby/internal/models"
	"github.com/yourusername/derby/internal/race"
)

// DefaultRoster returns the four standard runners in lane order.
func DefaultRoster() []*models.Horse {
	return []*models.Horse{
		models.NewHorse('>', "Le Horse", 0.70),
		models.NewHorse('^', "Solider", 0.65),
		models.NewHorse('#', "The Castle", 0.75),
		models.NewHorse('*', "King", 0.68),
	}
}

// GenerateHorse creates the runner for lane index with random attributes:
// confidence 0.5-0.9, speed 0.6-0.9, stamina 0.5-0.9, and random breed,
// coat and equipment.
func GenerateHorse(index int, rng race.RandomSource) *models.Horse {
	h := models.NewHorse(rune('@'+index), fmt.Sprintf("Horse %d", index+1), 0.5+rng.Float64()*0.4)

	breed := pick(models.Breeds, rng)
	coat := pick(models.CoatColors, rng)
	saddle := pick(models.Saddles, rng)
	shoes := pick(models.Horseshoes, rng)

	h.BaseSpeed = 0.6 + rng.Float64()*0.3
	h.BaseStamina = 0.5 + rng.Float64()*0.4
	h.Customize(models.HorseCustomization{
		Breed:      &breed,
		CoatColor:  &coat,
		Saddle:     &saddle,
		Horseshoes: &shoes,
	})
	return h
}

// resizeRoster keeps the horses in lanes below n and generates the rest.
func resizeRoster(horses []*models.Horse, n int, rng race.RandomSource) []*models.Horse {
	if n <= len(horses) {
		return append([]*models.Horse(nil), horses[:n]...)
	}
	out := append([]*models.Horse(nil), horses...)
	for i := len(horses); i < n; i++ {
		out = append(out, GenerateHorse(i, rng))
	}
	return out
}

func pick(options []string, rng race.RandomSource) string {
	i := int(rng.Float64() * float64(len(options)))
	if i >= len(options) {
		i = len(options) - 1
	}
	return options[i]
}

// validateCustomization rejects attribute values outside the known tables.
func validateCustomization(c models.HorseCustomization) error {
	checks := []struct {
		field   string
		value   *string
		options []string
	}{
		{"breed", c.Breed, models.Breeds},
		{"coat color", c.CoatColor, models.CoatColors},
		{"saddle", c.Saddle, models.Saddles},
		{"horseshoes", c.Horseshoes, models.Horseshoes},
	}
	for _, chk := range checks {
		if chk.value == nil {
			continue
		}
		if !contains(chk.options, *chk.value) {
			return fmt.Errorf("%w: unknown %s %q", models.ErrInvalidCustomization, chk.field, *chk.value)
		}
	}
	if c.Name != nil && *c.Name == "" {
		return fmt.Errorf("%w: empty name", models.ErrInvalidCustomization)
	}
	return nil
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
