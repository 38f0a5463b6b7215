package feature

import (
	"strings"
	"unicode/utf8"
)

// Vocabulary behind the presence extractors. Lists are matched against
// lowercased tokens, so entries stay lowercase.
var (
	modals = []string{
		"can", "could", "may", "might", "must",
		"shall", "should", "will", "would", "ought",
	}

	hedges = []string{
		"perhaps", "possibly", "probably", "apparently", "somewhat",
		"likely", "presumably", "arguably", "roughly", "almost",
		"maybe", "seems", "suggests", "partly",
	}

	transitionals = []string{
		"however", "although", "though", "nevertheless", "nonetheless",
		"meanwhile", "furthermore", "moreover", "conversely", "otherwise",
		"instead", "whereas", "yet", "still",
	}

	conjunctives = []string{
		"because", "therefore", "thus", "consequently", "hence",
		"since", "accordingly", "so",
	}

	determiners = []string{
		"the", "a", "an", "this", "that", "these", "those",
		"each", "every", "either", "neither", "some", "any", "all", "both",
	}

	intensifiers = []string{
		"very", "extremely", "absolutely", "completely", "totally",
		"utterly", "definitely", "certainly", "never", "always",
		"undoubtedly", "clearly", "obviously",
	}

	// contentFlags are phrase cues for differentiated or integrated
	// reasoning: acknowledging another viewpoint, weighing alternatives,
	// naming trade-offs.
	contentFlags = []string{
		"on the other hand", "at the same time", "in contrast",
		"by comparison", "it is possible", "it could be argued",
		"alternatively", "both sides", "trade off", "trade offs",
		"perspective", "viewpoint", "tension", "interplay", "mutual",
	}
)

// Length emits the raw character length of the paragraph.
func Length() Extractor {
	return Extractor{
		Name: "length",
		Extract: func(text string) Dict {
			return Dict{"length": float64(utf8.RuneCountInString(text))}
		},
	}
}

// WordLength emits word-shape statistics: mean token length and the share
// of long tokens (more than six characters).
func WordLength() Extractor {
	return Extractor{
		Name: "word_length",
		Extract: func(text string) Dict {
			tokens := Tokens(text)
			if len(tokens) == 0 {
				return Dict{"word_length_mean": 0, "word_length_long_ratio": 0}
			}
			total := 0
			long := 0
			for _, tok := range tokens {
				n := utf8.RuneCountInString(tok)
				total += n
				if n > 6 {
					long++
				}
			}
			return Dict{
				"word_length_mean":       float64(total) / float64(len(tokens)),
				"word_length_long_ratio": float64(long) / float64(len(tokens)),
			}
		},
	}
}

// TypeToken emits the type/token ratio: distinct tokens over total tokens,
// a rough lexical-diversity signal.
func TypeToken() Extractor {
	return Extractor{
		Name: "type_token",
		Extract: func(text string) Dict {
			tokens := Tokens(text)
			if len(tokens) == 0 {
				return Dict{"type_token_ratio": 0}
			}
			return Dict{
				"type_token_ratio": float64(len(tokenSet(tokens))) / float64(len(tokens)),
			}
		},
	}
}

// ModalPresence emits an indicator per modal verb found in the text.
func ModalPresence() Extractor {
	return presenceExtractor("modal_presence", "modal:", modals)
}

// HedgePresence emits an indicator per hedging term found in the text.
func HedgePresence() Extractor {
	return presenceExtractor("hedge_presence", "hedge:", hedges)
}

// TransitionalPresence emits an indicator per transitional marker found in
// the text.
func TransitionalPresence() Extractor {
	return presenceExtractor("transitional_presence", "transition:", transitionals)
}

// ConjunctivesPresence emits an indicator per causal/consequential
// conjunctive found in the text.
func ConjunctivesPresence() Extractor {
	return presenceExtractor("conjunctives_presence", "conjunctive:", conjunctives)
}

// presenceExtractor builds an indicator extractor over a token vocabulary.
// Only terms actually present contribute a feature, keeping dicts sparse.
func presenceExtractor(name, prefix string, vocabulary []string) Extractor {
	return Extractor{
		Name: name,
		Extract: func(text string) Dict {
			present := tokenSet(Tokens(text))
			d := make(Dict)
			for _, term := range vocabulary {
				if _, ok := present[term]; ok {
					d[prefix+term] = 1
				}
			}
			return d
		},
	}
}

// MoreMost counts comparative and superlative markers.
func MoreMost() Extractor {
	return Extractor{
		Name: "more_most",
		Extract: func(text string) Dict {
			d := Dict{"more_count": 0, "most_count": 0}
			for _, tok := range Tokens(text) {
				switch {
				case tok == "more" || tok == "less" || strings.HasSuffix(tok, "er") && len(tok) > 4:
					d["more_count"]++
				case tok == "most" || tok == "least" || strings.HasSuffix(tok, "est") && len(tok) > 4:
					d["most_count"]++
				}
			}
			return d
		},
	}
}

// WordIntensity counts intensifying vocabulary and its share of all tokens.
func WordIntensity() Extractor {
	intense := make(map[string]struct{}, len(intensifiers))
	for _, term := range intensifiers {
		intense[term] = struct{}{}
	}
	return Extractor{
		Name: "word_intensity",
		Extract: func(text string) Dict {
			tokens := Tokens(text)
			count := 0
			for _, tok := range tokens {
				if _, ok := intense[tok]; ok {
					count++
				}
			}
			d := Dict{"intensifier_count": float64(count)}
			if len(tokens) > 0 {
				d["intensifier_ratio"] = float64(count) / float64(len(tokens))
			}
			return d
		},
	}
}

// PunctuationPresence counts clause-structuring punctuation in the raw text.
func PunctuationPresence() Extractor {
	marks := map[string]rune{
		"punct:comma":     ',',
		"punct:semicolon": ';',
		"punct:colon":     ':',
		"punct:question":  '?',
		"punct:dash":      '-',
	}
	return Extractor{
		Name: "punctuation_presence",
		Extract: func(text string) Dict {
			d := make(Dict, len(marks))
			for name, mark := range marks {
				d[name] = float64(strings.Count(text, string(mark)))
			}
			return d
		},
	}
}

// DeterminerUsage counts determiners and their share of all tokens.
func DeterminerUsage() Extractor {
	dets := make(map[string]struct{}, len(determiners))
	for _, term := range determiners {
		dets[term] = struct{}{}
	}
	return Extractor{
		Name: "determiner_usage",
		Extract: func(text string) Dict {
			tokens := Tokens(text)
			count := 0
			for _, tok := range tokens {
				if _, ok := dets[tok]; ok {
					count++
				}
			}
			d := Dict{"determiner_count": float64(count)}
			if len(tokens) > 0 {
				d["determiner_ratio"] = float64(count) / float64(len(tokens))
			}
			return d
		},
	}
}

// ContentFlags emits an indicator per curated reasoning cue phrase.
func ContentFlags() Extractor {
	return Extractor{
		Name: "content_flags",
		Extract: func(text string) Dict {
			tokens := Tokens(text)
			d := make(Dict)
			for _, phrase := range contentFlags {
				if containsPhrase(tokens, phrase) {
					d["flag:"+strings.ReplaceAll(phrase, " ", "_")] = 1
				}
			}
			return d
		},
	}
}

// Catalogue returns all built-in extractors in a stable order.
func Catalogue() []Extractor {
	return []Extractor{
		ContentFlags(),
		Length(),
		WordLength(),
		TypeToken(),
		ModalPresence(),
		MoreMost(),
		HedgePresence(),
		WordIntensity(),
		TransitionalPresence(),
		ConjunctivesPresence(),
		PunctuationPresence(),
		DeterminerUsage(),
	}
}
