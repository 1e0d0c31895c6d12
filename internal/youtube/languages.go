package youtube

// Language pairs a caption language code with its display name.
type Language struct {
	Code string
	Name string
}

// CommonLanguages lists the language preferences offered to the user.
// The code is only a fetch hint; it is never validated against YouTube.
var CommonLanguages = []Language{
	{"en", "English"},
	{"hi", "Hindi"},
	{"es", "Spanish"},
	{"fr", "French"},
	{"de", "German"},
	{"it", "Italian"},
	{"pt", "Portuguese"},
	{"ru", "Russian"},
	{"ja", "Japanese"},
	{"ko", "Korean"},
	{"zh", "Chinese"},
	{"ar", "Arabic"},
	{"bn", "Bengali"},
	{"ta", "Tamil"},
	{"te", "Telugu"},
	{"ml", "Malayalam"},
	{"kn", "Kannada"},
	{"gu", "Gujarati"},
	{"pa", "Punjabi"},
	{"mr", "Marathi"},
	{"ur", "Urdu"},
}

// DisplayName returns the human-readable name for a language code, or the
// code itself when unknown.
func DisplayName(code string) string {
	for _, l := range CommonLanguages {
		if l.Code == code {
			return l.Name
		}
	}
	return code
}
