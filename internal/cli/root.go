// Package cmd implements the crawler's command-line surface: flag
// parsing and config-file loading.
//
// A cobra root command holds PersistentFlags plus an
// InitConfig/InitConfigWithError split so tests can assert on errors
// without os.Exit, covering this crawler's frontier/politeness/dedup
// flag set.
package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/nurlcrawl/nurlcrawl/internal/config"
	"github.com/nurlcrawl/nurlcrawl/internal/crawler"
	"github.com/nurlcrawl/nurlcrawl/internal/frontier"
	"github.com/nurlcrawl/nurlcrawl/internal/metadata"
	"github.com/spf13/cobra"
)

var (
	cfgFile         string
	seedURLs        []string
	restart         bool
	useCache        bool
	strict          bool
	allowedSuffixes []string
	saveFile        string
	robotsCacheFile string
	threadsCount    int
	timeDelay       time.Duration
	userAgent       string
	cacheServer     string
	randomSeed      int64
	policy          string
	hybridH         int
	maxAbsDepth     int
	maxRelDepth     int
	maxMonoDepth    int
	maxDupDepth     int
	minContentLen   int
	maxContentLen   int
	minUniqueWords  int
	minMaxWordCount int
	minWords        int
	simThreshold    int
)

// parseSeedURLs converts a string slice of URLs to []url.URL.
func parseSeedURLs(urlStrings []string) ([]url.URL, error) {
	if len(urlStrings) == 0 {
		return nil, fmt.Errorf("seed URLs cannot be empty")
	}

	var urls []url.URL
	for _, urlStr := range urlStrings {
		parsedURL, err := url.Parse(urlStr)
		if err != nil {
			return nil, fmt.Errorf("error parsing seed URL %s: %w", urlStr, err)
		}
		urls = append(urls, *parsedURL)
	}
	return urls, nil
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "nurlcrawl",
	Short: "A polite, resumable, multi-threaded web crawler.",
	Long: `nurlcrawl crawls a seed set of URLs breadth-first, depth-first, or
under a hybrid traversal policy, respecting each domain's robots.txt and
crawl-delay, deduplicating near-identical pages by content and similarity
fingerprint, and persisting its frontier so an interrupted crawl resumes
exactly where it left off.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(seedURLs) == 0 {
			fmt.Fprintf(os.Stderr, "Error: --seed-url is required. Please provide at least one seed URL to start crawling.\n")
			cmd.Usage()
			os.Exit(1)
		}

		parsedURLs, err := parseSeedURLs(seedURLs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}

		cfg := InitConfig(parsedURLs)

		var urls []string
		for _, u := range cfg.SeedURLs() {
			urls = append(urls, u.String())
		}
		fmt.Printf("Seed URLs: %s\n", strings.Join(urls, ", "))
		fmt.Printf("Save file: %s\n", cfg.SaveFile())
		fmt.Printf("Policy: %s (hybridH=%d)\n", cfg.Policy(), cfg.HybridH())
		fmt.Printf("Threads: %d, time delay: %v\n", cfg.ThreadsCount(), cfg.TimeDelay())
		fmt.Printf("Use cache: %t\n", cfg.UseCache())

		sink := metadata.NewRecorder("crawl")
		c, cerr := crawler.New(cfg, sink, sink)
		if cerr != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", cerr)
			os.Exit(1)
		}
		if cerr := c.Run(context.Background()); cerr != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", cerr)
			os.Exit(1)
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called by main.main() exactly once.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// RootCmd exposes the root command for wiring subcommands (e.g. report)
// from main.
func RootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config_file", "config.json", "config file path")
	rootCmd.PersistentFlags().StringArrayVar(&seedURLs, "seed-url", []string{}, "one or more starting URLs (can be repeated)")
	rootCmd.PersistentFlags().BoolVar(&restart, "restart", false, "delete any existing save file and robots cache before starting")
	rootCmd.PersistentFlags().BoolVar(&useCache, "use_cache", false, "enable retry of transient fetch failures (fetches still go to the origin)")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", true, "restrict crawl to allowed-suffix hosts")
	rootCmd.PersistentFlags().StringArrayVar(&allowedSuffixes, "allowed-suffix", []string{}, "host suffix eligible for crawling (can be repeated)")
	rootCmd.PersistentFlags().StringVar(&saveFile, "save-file", "", "persisted frontier snapshot path")
	rootCmd.PersistentFlags().StringVar(&robotsCacheFile, "robots-cache-file", "", "persisted robots cache sidecar path")
	rootCmd.PersistentFlags().IntVar(&threadsCount, "threads_count", 0, "number of concurrent worker goroutines")
	rootCmd.PersistentFlags().DurationVar(&timeDelay, "time-delay", 0, "politeness delay between fetches to the same domain")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests and robots.txt matching")
	rootCmd.PersistentFlags().StringVar(&cacheServer, "cache-server", "", "cache-server base URL, stored in the config; fetches are not routed through it")
	rootCmd.PersistentFlags().Int64Var(&randomSeed, "random-seed", 0, "seed for retry jitter (0 for current time)")
	rootCmd.PersistentFlags().StringVar(&policy, "policy", "", "traversal policy: dfs, bfs, or hybrid")
	rootCmd.PersistentFlags().IntVar(&hybridH, "hybrid-h", 0, "hybrid policy's absolute-depth head-pop threshold")
	rootCmd.PersistentFlags().IntVar(&maxAbsDepth, "max-abs-depth", 0, "maximum absolute link depth from any seed")
	rootCmd.PersistentFlags().IntVar(&maxRelDepth, "max-rel-depth", 0, "maximum relative directory depth")
	rootCmd.PersistentFlags().IntVar(&maxMonoDepth, "max-mono-depth", 0, "maximum consecutive same-path-segment depth")
	rootCmd.PersistentFlags().IntVar(&maxDupDepth, "max-dup-depth", 0, "maximum consecutive duplicate-segment depth")
	rootCmd.PersistentFlags().IntVar(&minContentLen, "min-content-len", 0, "minimum response body length")
	rootCmd.PersistentFlags().IntVar(&maxContentLen, "max-content-len", 0, "maximum response body length")
	rootCmd.PersistentFlags().IntVar(&minUniqueWords, "min-unique-words", 0, "minimum unique non-stopword count")
	rootCmd.PersistentFlags().IntVar(&minMaxWordCount, "min-max-word-count", 0, "minimum count of the page's most common word")
	rootCmd.PersistentFlags().IntVar(&minWords, "min-words", 0, "minimum total non-stopword count")
	rootCmd.PersistentFlags().IntVar(&simThreshold, "sim-threshold", 0, "maximum simhash Hamming distance considered a duplicate")
}

// InitConfig reads the config file or CLI flags and builds a Config,
// exiting the process on error. seedUrls is mandatory.
func InitConfig(seedUrls []url.URL) config.Config {
	cfg, err := InitConfigWithError(seedUrls)
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
	return cfg
}

// InitConfigWithError reads the config file or CLI flags and builds a
// Config, returning any error instead of exiting — used by tests and by
// InitConfig.
func InitConfigWithError(seedUrls []url.URL) (config.Config, error) {
	if len(seedUrls) == 0 {
		return config.Config{}, fmt.Errorf("%w: seedUrls cannot be empty", config.ErrInvalidConfig)
	}

	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			cfg, err := config.WithConfigFile(cfgFile)
			if err != nil {
				return cfg, fmt.Errorf("error initializing config from file: %w", err)
			}
			overridden, err := applyFlagOverrides(&cfg)
			if err != nil {
				return config.Config{}, err
			}
			return overridden.Build()
		}
	}

	builder := config.WithDefault(seedUrls)
	overridden, err := applyFlagOverrides(builder)
	if err != nil {
		return config.Config{}, err
	}
	return overridden.Build()
}

// applyFlagOverrides layers any explicitly-set CLI flags on top of
// builder, whether builder came from WithDefault or WithConfigFile: a
// flag always wins over a config-file value, which always wins over the
// built-in default.
func applyFlagOverrides(builder *config.Config) (*config.Config, error) {
	if restart {
		builder = builder.WithRestart(true)
	}
	if useCache {
		builder = builder.WithUseCache(true)
	}
	if !strict {
		builder = builder.WithStrict(false)
	}
	if len(allowedSuffixes) > 0 {
		builder = builder.WithAllowedSuffixes(allowedSuffixes)
	}
	if saveFile != "" {
		builder = builder.WithSaveFile(saveFile)
	}
	if robotsCacheFile != "" {
		builder = builder.WithRobotsCacheFile(robotsCacheFile)
	}
	if threadsCount > 0 {
		builder = builder.WithThreadsCount(threadsCount)
	}
	if timeDelay > 0 {
		builder = builder.WithTimeDelay(timeDelay)
	}
	if userAgent != "" {
		builder = builder.WithUserAgent(userAgent)
	}
	if cacheServer != "" {
		builder = builder.WithCacheServer(cacheServer)
	}
	if randomSeed != 0 {
		builder = builder.WithRandomSeed(randomSeed)
	}
	if policy != "" {
		parsed, err := frontier.ParsePolicy(policy)
		if err != nil {
			return nil, err
		}
		builder = builder.WithPolicy(parsed)
	}
	if hybridH > 0 {
		builder = builder.WithHybridH(hybridH)
	}
	if maxAbsDepth > 0 {
		builder = builder.WithMaxAbsDepth(maxAbsDepth)
	}
	if maxRelDepth > 0 {
		builder = builder.WithMaxRelDepth(maxRelDepth)
	}
	if maxMonoDepth > 0 {
		builder = builder.WithMaxMonoDepth(maxMonoDepth)
	}
	if maxDupDepth > 0 {
		builder = builder.WithMaxDupDepth(maxDupDepth)
	}
	if minContentLen > 0 {
		builder = builder.WithMinContentLen(minContentLen)
	}
	if maxContentLen > 0 {
		builder = builder.WithMaxContentLen(maxContentLen)
	}
	if minUniqueWords > 0 {
		builder = builder.WithMinUniqueWords(minUniqueWords)
	}
	if minMaxWordCount > 0 {
		builder = builder.WithMinMaxWordCount(minMaxWordCount)
	}
	if minWords > 0 {
		builder = builder.WithMinWords(minWords)
	}
	if simThreshold > 0 {
		builder = builder.WithSimThreshold(simThreshold)
	}
	return builder, nil
}

// ResetFlags restores every package-level flag variable to its flag
// default; tests call this between cases since cobra flag state is
// otherwise process-global.
func ResetFlags() {
	cfgFile = "config.json"
	seedURLs = []string{}
	restart = false
	useCache = false
	strict = true
	allowedSuffixes = []string{}
	saveFile = ""
	robotsCacheFile = ""
	threadsCount = 0
	timeDelay = 0
	userAgent = ""
	cacheServer = ""
	randomSeed = 0
	policy = ""
	hybridH = 0
	maxAbsDepth = 0
	maxRelDepth = 0
	maxMonoDepth = 0
	maxDupDepth = 0
	minContentLen = 0
	maxContentLen = 0
	minUniqueWords = 0
	minMaxWordCount = 0
	minWords = 0
	simThreshold = 0
}

func SetConfigFileForTest(path string)    { cfgFile = path }
func SetSeedURLsForTest(urls []string)    { seedURLs = urls }
func SetRestartForTest(r bool)            { restart = r }
func SetUseCacheForTest(u bool)           { useCache = u }
func SetStrictForTest(s bool)             { strict = s }
func SetSaveFileForTest(path string)      { saveFile = path }
func SetThreadsCountForTest(n int)        { threadsCount = n }
func SetUserAgentForTest(ua string)       { userAgent = ua }
func SetPolicyForTest(p string)           { policy = p }
func SetMaxAbsDepthForTest(n int)         { maxAbsDepth = n }
