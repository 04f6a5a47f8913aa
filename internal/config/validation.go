package config

import (
	"net/url"
	"strings"

	"git.home.luguber.info/inful/daybook/internal/foundation/errors"
)

// ValidateConfig validates a defaulted configuration.
func ValidateConfig(cfg *Config) error {
	v := &configurationValidator{config: cfg}
	return v.validate()
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateContent(); err != nil {
		return err
	}
	if err := cv.validateServer(); err != nil {
		return err
	}
	if err := cv.validateSite(); err != nil {
		return err
	}
	return cv.validateMonitoring()
}

func (cv *configurationValidator) validateContent() error {
	c := cv.config.Content
	if strings.ContainsAny(c.MetadataMarker, "= \t") {
		return errors.ConfigError("metadata marker must not contain '=' or whitespace").
			WithContext("metadata_marker", c.MetadataMarker).Build()
	}
	if c.PostsRoot == c.TemplatesRoot {
		return errors.ConfigError("posts root and templates root must differ").
			WithContext("posts_root", c.PostsRoot).Build()
	}
	return nil
}

func (cv *configurationValidator) validateServer() error {
	port := cv.config.Server.Port
	if port < 1 || port > 65535 {
		return errors.ConfigError("server port out of range").WithContext("port", port).Build()
	}
	return nil
}

func (cv *configurationValidator) validateSite() error {
	base := cv.config.Site.BaseURL
	if base == "" {
		return nil
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.ConfigError("site base_url must be an absolute URL").
			WithCause(err).WithContext("base_url", base).Build()
	}
	return nil
}

func (cv *configurationValidator) validateMonitoring() error {
	p := cv.config.Monitoring.Metrics.Path
	if !strings.HasPrefix(p, "/") {
		return errors.ConfigError("metrics path must start with '/'").WithContext("path", p).Build()
	}
	return nil
}
