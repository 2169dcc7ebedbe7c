package cmd

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/reloadpress/autopost/internal/config"
	"github.com/reloadpress/autopost/internal/enhance"
	"github.com/reloadpress/autopost/internal/generate"
	"github.com/reloadpress/autopost/internal/images"
	"github.com/reloadpress/autopost/internal/logger"
	"github.com/reloadpress/autopost/internal/pipeline"
	"github.com/reloadpress/autopost/internal/thumbnail"
	"github.com/reloadpress/autopost/internal/wordpress"
)

// deps bundles everything a command needs, built once from config.
type deps struct {
	cfg      *config.Config
	log      logger.Logger
	cms      *wordpress.Client
	registry images.Registry
	resolver *images.Resolver
	enhancer *enhance.Enhancer
	gen      *generate.Generator
	thumbs   thumbnail.Generator

	closers []func() error
}

func (d *deps) Close() {
	for _, c := range d.closers {
		_ = c()
	}
	_ = d.log.Sync()
}

// newDeps wires the dependency graph. The generator, search service,
// redis registry, and thumbnail source are all optional; what is not
// configured degrades rather than failing here.
func newDeps() (*deps, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if debug {
		cfg.Debug = true
	}

	log, err := logger.New(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	d := &deps{cfg: cfg, log: log}

	d.cms, err = wordpress.New(cfg.WordPress.BaseURL, cfg.WordPress.Username, cfg.WordPress.AppPassword, log)
	if err != nil {
		return nil, err
	}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		d.registry = images.NewRedisRegistry(client, log)
		d.closers = append(d.closers, client.Close)
	} else {
		fileReg, err := images.OpenFileRegistry(cfg.Images.RegistryPath)
		if err != nil {
			return nil, err
		}
		d.registry = fileReg
		d.closers = append(d.closers, fileReg.Close)
	}

	var search images.SearchService
	if cfg.Unsplash.AccessKey != "" {
		search = images.NewUnsplashClient("", cfg.Unsplash.AccessKey, 0, log)
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	d.resolver = images.NewResolver(search, d.registry, rng, log)

	d.enhancer = enhance.New(d.resolver,
		enhance.Config{IllustrationTarget: cfg.Images.IllustrationTarget}, log)

	if cfg.OpenAI.APIKey != "" {
		llm, err := generate.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
		if err != nil {
			return nil, err
		}
		d.gen = generate.New(llm, generate.Config{MinWords: cfg.Pipeline.MinWords}, log)
	}

	switch {
	case cfg.Thumbnail.BaseMediaID > 0:
		d.thumbs = thumbnail.NewMediaBase(cfg.Thumbnail.BaseMediaID, d.cms, d.cms, log)
	case cfg.Thumbnail.BaseImageURL != "":
		d.thumbs = thumbnail.NewRemoteBase(cfg.Thumbnail.BaseImageURL, d.cms, log)
	}

	return d, nil
}

func (d *deps) runner() (*pipeline.Runner, error) {
	if d.gen == nil {
		return nil, fmt.Errorf("openai.api_key is required to generate posts")
	}
	return pipeline.NewRunner(d.cms, d.gen, d.enhancer, d.resolver, d.thumbs,
		pipeline.RunnerConfig{
			InterPostDelay: d.cfg.Pipeline.InterPostDelay,
			Status:         d.cfg.Pipeline.Status,
			TitleWindow:    d.cfg.Pipeline.TitleWindow,
		}, d.log), nil
}

func (d *deps) maintainer() *pipeline.Maintainer {
	var gen pipeline.Generator
	if d.gen != nil {
		gen = d.gen
	}
	return pipeline.NewMaintainer(d.cms, d.enhancer, gen,
		pipeline.MaintainerConfig{MinPlausibleWords: d.cfg.Pipeline.MinPlausibleWords}, d.log)
}
