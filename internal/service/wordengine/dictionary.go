package wordengine

import (
	"maps"
	"slices"

	"github.com/phrazzld/silabas-api/internal/domain"
)

// Entry is a dictionary word with its syllable count and computed difficulty.
type Entry struct {
	Text       string
	Syllables  int
	Difficulty int
}

// Dictionary maps an upper-case consonant letter to words grouped by
// syllable count.
type Dictionary map[string]map[int][]string

// DefaultDictionary holds the built-in word lists.
var DefaultDictionary = Dictionary{
	"B": {
		1: {"ba", "be", "bi", "bo", "bu"},
		2: {"boca", "bebe", "bobo", "baba", "bubo"},
		3: {"banana", "bebida", "babero", "bobina", "burbujas"},
	},
	"C": {
		1: {"ca", "co", "cu"},
		2: {"casa", "coco", "cuna", "cara", "cubo"},
		3: {"camisa", "cocina", "cabeza", "camino", "cuchara"},
	},
	"D": {
		1: {"da", "de", "di", "do", "du"},
		2: {"dado", "dedo", "duda", "dona", "ducha"},
		3: {"dinero", "domingo", "dedito", "dulzura", "delicia"},
	},
	"F": {
		1: {"fa", "fe", "fi", "fo", "fu"},
		2: {"foca", "foto", "fuma", "faro", "fuego"},
		3: {"familia", "fantasia", "figura", "futuro", "felino"},
	},
	"G": {
		1: {"ga", "go", "gu"},
		2: {"gato", "goma", "gula", "gana", "gusto"},
		3: {"gallina", "guitarra", "gasolina", "gigante", "globito"},
	},
	"L": {
		1: {"la", "le", "li", "lo", "lu"},
		2: {"luna", "lobo", "lima", "lana", "loro"},
		3: {"limones", "lagarto", "libreta", "lavadora", "lechuga"},
	},
	"M": {
		1: {"ma", "me", "mi", "mo", "mu"},
		2: {"mama", "mesa", "mano", "mono", "mula"},
		3: {"mariposa", "medicina", "manzana", "montaña", "muñeca"},
	},
	"N": {
		1: {"na", "ne", "ni", "no", "nu"},
		2: {"nana", "nene", "nido", "nota", "nube"},
		3: {"naranja", "navidad", "niñito", "numero", "naturaleza"},
	},
	"P": {
		1: {"pa", "pe", "pi", "po", "pu"},
		2: {"papa", "peso", "pino", "polo", "puma"},
		3: {"paloma", "pelota", "pintura", "pollo", "pupila"},
	},
	"R": {
		1: {"ra", "re", "ri", "ro", "ru"},
		2: {"rata", "remo", "risa", "ropa", "ruta"},
		3: {"ratones", "regalo", "revista", "rosita", "ruleta"},
	},
	"S": {
		1: {"sa", "se", "si", "so", "su"},
		2: {"sala", "seda", "silla", "sopa", "suma"},
		3: {"salada", "semana", "silbato", "soldado", "susurro"},
	},
	"T": {
		1: {"ta", "te", "ti", "to", "tu"},
		2: {"taza", "tela", "tina", "toro", "tubo"},
		3: {"tomate", "telefono", "tijeras", "tortuga", "tulipan"},
	},
}

// Candidates returns the dictionary words for letter, matched case-insensitively.
// A zero syllables selects every syllable group; a zero maxDifficulty disables
// the difficulty filter. Entries come in ascending syllable order. An unknown
// letter or syllable group yields no entries.
func (d Dictionary) Candidates(letter string, syllables, maxDifficulty int) []Entry {
	groups, ok := d[domain.NormalizeLetter(letter)]
	if !ok {
		return nil
	}

	counts := []int{syllables}
	if syllables == 0 {
		counts = slices.Sorted(maps.Keys(groups))
	}

	var entries []Entry
	for _, n := range counts {
		for _, text := range groups[n] {
			difficulty := Score(text, n)
			if maxDifficulty > 0 && difficulty > maxDifficulty {
				continue
			}
			entries = append(entries, Entry{Text: text, Syllables: n, Difficulty: difficulty})
		}
	}
	return entries
}
