package taxonomy

// TopicEntry is one topic of the taxonomy file.
type TopicEntry struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// Config is the root structure of the taxonomy file:
//
//	topics:
//	  - label: AI/ML
//	    keywords: [ai, ml]
//	  - label: Other
type Config struct {
	Topics []TopicEntry `yaml:"topics"`
}
