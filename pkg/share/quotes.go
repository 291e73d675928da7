package share

import "math/rand"

var quotePools = map[string][]string{
	"euphoric": {
		"You are transcending limits. Pure divinity in motion.",
		"Symmetry, progress, perfection. You've become the standard.",
		"The atmosphere itself bows to your momentum.",
	},
	"polarizing": {
		"Mediocrity is a choice you are dangerously close to making.",
		"Is this the 'effort' they talk about in those motivational videos?",
		"Statistics don't lie, but your excuses certainly do.",
	},
	"gaslighting": {
		"You actually thought you were doing well today, didn't you?",
		"The data suggests you've been working, but your results say otherwise.",
		"Are you sure you remembered to log correctly? This looks... concerning.",
		"You're not tired. You're just bored of being average. Try harder.",
	},
}

// Quote picks a motivational line for a 0-100 progress figure. The tone
// degrades with the numbers.
func Quote(progress int) string {
	var pool []string
	switch {
	case progress >= 80:
		pool = quotePools["euphoric"]
	case progress >= 40:
		pool = quotePools["polarizing"]
	default:
		pool = quotePools["gaslighting"]
	}
	return pool[rand.Intn(len(pool))]
}
