// Package config builds the crawler's Config: seed URLs, politeness and
// retraversal limits, and the cache-server/traversal-policy knobs. Uses
// a builder pattern (WithDefault(...).Build(), a JSON configDTO overlay
// read by WithConfigFile) over this crawler's frontier/pipeline
// parameters.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/nurlcrawl/nurlcrawl/internal/frontier"
)

// Config is immutable once built via Build(); every field has a getter
// and is set through a With* builder method or a configDTO overlay.
type Config struct {
	//===============
	// Crawl scope
	//===============
	seedURLs        []url.URL
	strict          bool
	allowedSuffixes []string

	//===============
	// Persistence
	//===============
	saveFile        string
	robotsCacheFile string
	restart         bool

	//===============
	// Politeness & fetch
	//===============
	threadsCount int
	timeDelay    time.Duration
	userAgent    string
	useCache     bool
	cacheServer  string
	randomSeed   int64

	//===============
	// Traversal policy
	//===============
	policy  frontier.Policy
	hybridH int

	//===============
	// Sift limits
	//===============
	maxAbsDepth  int
	maxRelDepth  int
	maxMonoDepth int
	maxDupDepth  int

	//===============
	// Content thresholds
	//===============
	minContentLen int
	maxContentLen int

	//===============
	// Text thresholds
	//===============
	minUniqueWords  int
	minMaxWordCount int
	minWords        int
	simThreshold    int
}

type configDTO struct {
	SeedURLs        []string `json:"seedUrls"`
	Strict          *bool    `json:"strict,omitempty"`
	AllowedSuffixes []string `json:"allowedSuffixes,omitempty"`

	SaveFile        string `json:"saveFile,omitempty"`
	RobotsCacheFile string `json:"robotsCacheFile,omitempty"`
	Restart         bool   `json:"restart,omitempty"`

	ThreadsCount int           `json:"threadsCount,omitempty"`
	TimeDelay    time.Duration `json:"timeDelay,omitempty"`
	UserAgent    string        `json:"userAgent,omitempty"`
	UseCache     bool          `json:"useCache,omitempty"`
	CacheServer  string        `json:"cacheServer,omitempty"`
	RandomSeed   int64         `json:"randomSeed,omitempty"`

	Policy  string `json:"policy,omitempty"`
	HybridH int    `json:"hybridH,omitempty"`

	MaxAbsDepth  int `json:"maxAbsDepth,omitempty"`
	MaxRelDepth  int `json:"maxRelDepth,omitempty"`
	MaxMonoDepth int `json:"maxMonoDepth,omitempty"`
	MaxDupDepth  int `json:"maxDupDepth,omitempty"`

	MinContentLen int `json:"minContentLen,omitempty"`
	MaxContentLen int `json:"maxContentLen,omitempty"`

	MinUniqueWords  int `json:"minUniqueWords,omitempty"`
	MinMaxWordCount int `json:"minMaxWordCount,omitempty"`
	MinWords        int `json:"minWords,omitempty"`
	SimThreshold    int `json:"simThreshold,omitempty"`
}

func parseSeedURLs(raw []string) ([]url.URL, error) {
	urls := make([]url.URL, 0, len(raw))
	for _, s := range raw {
		u, err := url.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid seed url %q: %s", ErrInvalidConfig, s, err.Error())
		}
		urls = append(urls, *u)
	}
	return urls, nil
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	seedURLs, err := parseSeedURLs(dto.SeedURLs)
	if err != nil {
		return Config{}, err
	}

	cfg, err := WithDefault(seedURLs).Build()
	if err != nil {
		return Config{}, err
	}

	if dto.Strict != nil {
		cfg.strict = *dto.Strict
	}
	if len(dto.AllowedSuffixes) > 0 {
		cfg.allowedSuffixes = dto.AllowedSuffixes
	}
	if dto.SaveFile != "" {
		cfg.saveFile = dto.SaveFile
	}
	if dto.RobotsCacheFile != "" {
		cfg.robotsCacheFile = dto.RobotsCacheFile
	}
	cfg.restart = dto.Restart

	if dto.ThreadsCount != 0 {
		cfg.threadsCount = dto.ThreadsCount
	}
	if dto.TimeDelay != 0 {
		cfg.timeDelay = dto.TimeDelay
	}
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	cfg.useCache = dto.UseCache
	if dto.CacheServer != "" {
		cfg.cacheServer = dto.CacheServer
	}
	if dto.RandomSeed != 0 {
		cfg.randomSeed = dto.RandomSeed
	}

	if dto.Policy != "" {
		policy, err := frontier.ParsePolicy(dto.Policy)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalidConfig, err.Error())
		}
		cfg.policy = policy
	}
	if dto.HybridH != 0 {
		cfg.hybridH = dto.HybridH
	}

	if dto.MaxAbsDepth != 0 {
		cfg.maxAbsDepth = dto.MaxAbsDepth
	}
	if dto.MaxRelDepth != 0 {
		cfg.maxRelDepth = dto.MaxRelDepth
	}
	if dto.MaxMonoDepth != 0 {
		cfg.maxMonoDepth = dto.MaxMonoDepth
	}
	if dto.MaxDupDepth != 0 {
		cfg.maxDupDepth = dto.MaxDupDepth
	}

	if dto.MinContentLen != 0 {
		cfg.minContentLen = dto.MinContentLen
	}
	if dto.MaxContentLen != 0 {
		cfg.maxContentLen = dto.MaxContentLen
	}

	if dto.MinUniqueWords != 0 {
		cfg.minUniqueWords = dto.MinUniqueWords
	}
	if dto.MinMaxWordCount != 0 {
		cfg.minMaxWordCount = dto.MinMaxWordCount
	}
	if dto.MinWords != 0 {
		cfg.minWords = dto.MinWords
	}
	if dto.SimThreshold != 0 {
		cfg.simThreshold = dto.SimThreshold
	}

	return cfg, nil
}

// WithConfigFile reads a JSON config file and overlays it onto
// WithDefault's values.
func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	if err := json.Unmarshal(configContent, &cfgDTO); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(cfgDTO)
}

// WithDefault creates a new Config builder seeded with the crawl's seed
// URLs and the original crawler's default limits (crawler2/workerpipe.py's
// MAX_*DEPTH / MIN_*/MAX_CONTENT_LEN constants, and a SIM_THRESHOLD
// default of 5).
func WithDefault(seedUrls []url.URL) *Config {
	return &Config{
		seedURLs:        seedUrls,
		strict:          true,
		allowedSuffixes: nil,

		saveFile:        "crawl.nap",
		robotsCacheFile: "crawl.robocache",
		restart:         false,

		threadsCount: 4,
		timeDelay:    time.Second,
		userAgent:    "nurlcrawl/1.0",
		useCache:     false,
		cacheServer:  "",
		randomSeed:   time.Now().UnixNano(),

		policy:  frontier.PolicyBFS,
		hybridH: 2,

		maxAbsDepth:  8,
		maxRelDepth:  2,
		maxMonoDepth: 3,
		maxDupDepth:  1,

		minContentLen: 200,
		maxContentLen: 1_000_000,

		minUniqueWords:  5,
		minMaxWordCount: 2,
		minWords:        20,
		simThreshold:    5,
	}
}

func (c *Config) WithSeedURLs(urls []url.URL) *Config      { c.seedURLs = urls; return c }
func (c *Config) WithStrict(strict bool) *Config            { c.strict = strict; return c }
func (c *Config) WithAllowedSuffixes(s []string) *Config    { c.allowedSuffixes = s; return c }
func (c *Config) WithSaveFile(path string) *Config          { c.saveFile = path; return c }
func (c *Config) WithRobotsCacheFile(path string) *Config   { c.robotsCacheFile = path; return c }
func (c *Config) WithRestart(restart bool) *Config          { c.restart = restart; return c }
func (c *Config) WithThreadsCount(n int) *Config            { c.threadsCount = n; return c }
func (c *Config) WithTimeDelay(d time.Duration) *Config     { c.timeDelay = d; return c }
func (c *Config) WithUserAgent(ua string) *Config           { c.userAgent = ua; return c }
func (c *Config) WithUseCache(use bool) *Config              { c.useCache = use; return c }
func (c *Config) WithCacheServer(addr string) *Config        { c.cacheServer = addr; return c }
func (c *Config) WithRandomSeed(seed int64) *Config          { c.randomSeed = seed; return c }
func (c *Config) WithPolicy(p frontier.Policy) *Config       { c.policy = p; return c }
func (c *Config) WithHybridH(h int) *Config                  { c.hybridH = h; return c }
func (c *Config) WithMaxAbsDepth(n int) *Config              { c.maxAbsDepth = n; return c }
func (c *Config) WithMaxRelDepth(n int) *Config              { c.maxRelDepth = n; return c }
func (c *Config) WithMaxMonoDepth(n int) *Config             { c.maxMonoDepth = n; return c }
func (c *Config) WithMaxDupDepth(n int) *Config              { c.maxDupDepth = n; return c }
func (c *Config) WithMinContentLen(n int) *Config            { c.minContentLen = n; return c }
func (c *Config) WithMaxContentLen(n int) *Config            { c.maxContentLen = n; return c }
func (c *Config) WithMinUniqueWords(n int) *Config           { c.minUniqueWords = n; return c }
func (c *Config) WithMinMaxWordCount(n int) *Config          { c.minMaxWordCount = n; return c }
func (c *Config) WithMinWords(n int) *Config                 { c.minWords = n; return c }
func (c *Config) WithSimThreshold(n int) *Config             { c.simThreshold = n; return c }

// Build validates and returns the finished Config.
func (c *Config) Build() (Config, error) {
	if len(c.seedURLs) == 0 {
		return Config{}, fmt.Errorf("%w: seedUrls cannot be empty", ErrInvalidConfig)
	}
	if c.threadsCount < 1 {
		return Config{}, fmt.Errorf("%w: threadsCount must be >= 1", ErrInvalidConfig)
	}
	return *c, nil
}

func (c Config) SeedURLs() []url.URL {
	urls := make([]url.URL, len(c.seedURLs))
	copy(urls, c.seedURLs)
	return urls
}

func (c Config) Strict() bool                   { return c.strict }
func (c Config) AllowedSuffixes() []string       { return append([]string(nil), c.allowedSuffixes...) }
func (c Config) SaveFile() string                { return c.saveFile }
func (c Config) RobotsCacheFile() string         { return c.robotsCacheFile }
func (c Config) Restart() bool                   { return c.restart }
func (c Config) ThreadsCount() int               { return c.threadsCount }
func (c Config) TimeDelay() time.Duration        { return c.timeDelay }
func (c Config) UserAgent() string               { return c.userAgent }
func (c Config) UseCache() bool                  { return c.useCache }
func (c Config) CacheServer() string             { return c.cacheServer }
func (c Config) RandomSeed() int64               { return c.randomSeed }
func (c Config) Policy() frontier.Policy         { return c.policy }
func (c Config) HybridH() int                    { return c.hybridH }
func (c Config) MaxAbsDepth() int                { return c.maxAbsDepth }
func (c Config) MaxRelDepth() int                { return c.maxRelDepth }
func (c Config) MaxMonoDepth() int               { return c.maxMonoDepth }
func (c Config) MaxDupDepth() int                { return c.maxDupDepth }
func (c Config) MinContentLen() int              { return c.minContentLen }
func (c Config) MaxContentLen() int              { return c.maxContentLen }
func (c Config) MinUniqueWords() int             { return c.minUniqueWords }
func (c Config) MinMaxWordCount() int            { return c.minMaxWordCount }
func (c Config) MinWords() int                   { return c.minWords }
func (c Config) SimThreshold() int               { return c.simThreshold }
