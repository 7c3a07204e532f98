package game

type wordCategory struct {
	name  string
	words []string
}

var wordCategories = []wordCategory{
	{
		name: "Animals",
		words: []string{
			"elephant", "giraffe", "penguin", "kangaroo", "dolphin",
			"octopus", "turtle", "rhinoceros", "butterfly", "flamingo",
		},
	},
	{
		name: "Food",
		words: []string{
			"pizza", "hamburger", "spaghetti", "ice cream", "watermelon",
			"chocolate", "pancakes", "french fries", "sushi", "pineapple",
		},
	},
	{
		name: "Sports",
		words: []string{
			"basketball", "soccer", "tennis", "swimming", "volleyball",
			"baseball", "golf", "skateboarding", "skiing", "surfing",
		},
	},
	{
		name: "Objects",
		words: []string{
			"computer", "telephone", "umbrella", "glasses", "backpack",
			"bicycle", "camera", "television", "chair", "clock",
		},
	},
	{
		name: "Places",
		words: []string{
			"beach", "mountain", "library", "amusement park", "restaurant",
			"hospital", "school", "zoo", "airport", "supermarket",
		},
	},
}

// WordBank hands out word choices for the drawer. All choices in one call come
// from a single randomly picked category.
type WordBank struct {
	rng RandomSource
}

func NewWordBank(rng RandomSource) WordBank {
	return WordBank{rng: rng}
}

// ChooseOptions returns up to n distinct words from one random category,
// shuffled. If n exceeds the category size it returns the whole category
// rather than failing.
func (wb WordBank) ChooseOptions(n int) []string {
	category := wordCategories[wb.rng.Intn(len(wordCategories))]

	shuffled := make([]string, len(category.words))
	copy(shuffled, category.words)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := wb.rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
