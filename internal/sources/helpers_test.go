package sources

import "github.com/medwire/newscore/internal/config"

func feedConfig(name, feedType string) config.SourceConfig {
	return config.SourceConfig{
		Name: name,
		Type: feedType,
		URL:  "https://" + name + ".example/feed",
	}
}

func configWithFeed(name, feedType string) config.SourcesConfig {
	return config.SourcesConfig{
		Feeds: []config.SourceConfig{feedConfig(name, feedType)},
	}
}
