package churchtools

import "github.com/jaa/ctsong/internal/schema"

// Field names of SongFields.
const (
	FieldTitle     = "title"
	FieldAuthor    = "author"
	FieldCopyright = "copyright"
	FieldCCLI      = "ccli"
	FieldKey       = "key"
)

// Keys accepted for arrangements.
var Keys = []string{
	"C", "C#", "Db", "D", "D#", "Eb", "E", "F", "F#", "Gb", "G", "G#", "Ab", "A", "A#", "Bb", "B",
	"Cm", "C#m", "Dbm", "Dm", "D#m", "Ebm", "Em", "Fm", "F#m", "Gbm", "Gm", "G#m", "Abm", "Am", "A#m", "Bbm", "Bm",
}

// FieldSchema binds a song field to the limits the API enforces on it.
type FieldSchema struct {
	Name   string
	Schema schema.Schema
}

// SongFields lists the field limits in the order they are checked.
var SongFields = []FieldSchema{
	{Name: FieldTitle, Schema: schema.Schema{Type: []string{schema.TypeString}, MinLength: 2, MaxLength: 200}},
	{Name: FieldAuthor, Schema: schema.Schema{Type: []string{schema.TypeString}, MaxLength: 300}},
	{Name: FieldCopyright, Schema: schema.Schema{Type: []string{schema.TypeString}, MaxLength: 400}},
	{Name: FieldCCLI, Schema: schema.Schema{Type: []string{schema.TypeString}, MaxLength: 50}},
	{Name: FieldKey, Schema: schema.Schema{AnyOf: []schema.Schema{
		{Type: []string{schema.TypeString}, Enum: []string{""}},
		{Type: []string{schema.TypeString}, Enum: Keys},
	}}},
}
