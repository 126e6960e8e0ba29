package liftfile

// RawConstruct is one construct entry as written in the file. It always carries a "type" key;
// the rest is decoded by the construct itself.
type RawConstruct = map[string]interface{}

// File is the root structure of a lift configuration file.
//
//	service: photos
//	constructs:
//	  avatars:
//	    type: storage
//	    encryption: kms
type File struct {
	Service    string                  `yaml:"service" toml:"service"`
	Constructs map[string]RawConstruct `yaml:"constructs" toml:"constructs"`
}

// Type returns the construct type of raw, or "" when missing.
func Type(raw RawConstruct) string {
	t, _ := raw["type"].(string)
	return t
}
