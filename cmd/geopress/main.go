package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/eringen/geopress"
	"github.com/eringen/geopress/check"
	"github.com/eringen/geopress/content"
	"github.com/eringen/geopress/gitsync"
	"github.com/eringen/geopress/scaffold"
	"github.com/eringen/geopress/staticgen"
	"github.com/eringen/geopress/views"
)

// version is set at build time via ldflags.
var version = "dev"

var CLI struct {
	Config    string `short:"c" help:"Configuration file path" default:"geopress.yaml"`
	Verbose   bool   `short:"v" help:"Enable debug logging"`
	LogFormat string `help:"Log output format" enum:"console,json" default:"console"`

	Serve struct {
		Watch bool `help:"Reload the corpus when content files change"`
	} `cmd:"" help:"Run the blog engine"`

	Build struct {
		Output     string `short:"o" help:"Output directory (default from config)"`
		Drafts     bool   `help:"Include drafts and scheduled posts"`
		CheckLinks bool   `help:"Verify internal links in the exported site"`
	} `cmd:"" help:"Export the site to static files"`

	Check struct {
		Format string `help:"Report format" enum:"text,json" default:"text"`
	} `cmd:"" help:"Lint the content directory"`

	Sync struct{} `cmd:"" help:"Pull the content repository and exit"`

	New struct {
		Title       string   `arg:"" help:"Post title"`
		Slug        string   `help:"Explicit slug (derived from title when empty)"`
		Description string   `help:"Post description"`
		Tags        []string `help:"Comma separated tags"`
		Featured    bool     `help:"Mark the post featured"`
		Draft       bool     `help:"Create as draft"`
	} `cmd:"" help:"Scaffold a new post in the content directory"`

	Version struct{} `cmd:"" help:"Print the version"`
}

func main() {
	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name("geopress"),
		kong.Description("A file-based blog engine for geodesy writing."),
	)
	log := setupLogger()

	var err error
	switch ctx.Command() {
	case "serve":
		err = runServe(log)
	case "build":
		err = runBuild(log)
	case "check":
		err = runCheck()
	case "sync":
		err = runSync(log)
	case "new <title>":
		err = runNew()
	case "version":
		fmt.Printf("geopress %s\n", version)
	}
	if err != nil {
		log.Fatal().Err(err).Msg(ctx.Command())
	}
}

func setupLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if CLI.Verbose {
		level = zerolog.DebugLevel
	}
	var log zerolog.Logger
	if CLI.LogFormat == "console" {
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	} else {
		log = zerolog.New(os.Stderr)
	}
	return log.Level(level).With().Timestamp().Logger()
}

func loadConfig() (geopress.SiteConfig, error) {
	return geopress.LoadConfig(CLI.Config)
}

func runServe(log zerolog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if CLI.Serve.Watch {
		cfg.WatchContent = true
	}

	app := geopress.New(cfg, views.Default(), geopress.WithLogger(log))
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Start(ctx)
}

func runBuild(log zerolog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	output := CLI.Build.Output
	if output == "" {
		output = cfg.OutputDir
	}

	corpus, problems, err := content.LoadDir(cfg.ContentDir, content.LoadOptions{
		DefaultAuthor: cfg.Author,
		ReadingWPM:    cfg.ReadingWPM,
	})
	if err != nil {
		return err
	}
	for _, p := range problems {
		log.Warn().Str("path", p.Path).Msg(p.Message)
	}

	posts := corpus.Posts
	if !CLI.Build.Drafts {
		posts = content.Visible(posts, time.Now(), 0)
	}

	builder := &staticgen.Builder{
		Site:         cfg.Site(),
		Views:        views.Default(),
		OutputDir:    output,
		StaticDir:    cfg.StaticDir,
		PostsPerPage: cfg.PostsPerPage,
		Minify:       cfg.Minify,
		Log:          log,
	}
	rec, err := builder.Build(context.Background(), posts)
	if err != nil {
		return err
	}

	// Keep the build history the admin dashboard shows.
	if store, serr := geopress.NewStore(cfg.DatabasePath); serr == nil {
		if rerr := store.RecordBuild(rec); rerr != nil {
			log.Warn().Err(rerr).Msg("record build")
		}
		store.Close()
	}

	if CLI.Build.CheckLinks {
		broken, err := staticgen.VerifyLinks(output, cfg.URL)
		if err != nil {
			return err
		}
		for _, b := range broken {
			log.Error().Str("page", b.Page).Str("target", b.Target).Msg("broken link")
		}
		if len(broken) > 0 {
			return fmt.Errorf("%d broken internal links", len(broken))
		}
	}
	return nil
}

func runCheck() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	res, err := check.Run(cfg.ContentDir, check.Options{
		DefaultAuthor: cfg.Author,
		StaticDir:     cfg.StaticDir,
	})
	if err != nil {
		return err
	}
	if CLI.Check.Format == "json" {
		err = check.WriteJSON(os.Stdout, res)
	} else {
		err = check.WriteText(os.Stdout, res)
	}
	if err != nil {
		return err
	}
	if res.HasErrors() {
		os.Exit(1)
	}
	return nil
}

func runSync(log zerolog.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.GitRemote == "" {
		return fmt.Errorf("no git_remote configured")
	}

	client := &gitsync.Client{Dir: cfg.ContentDir, Log: log}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	res, err := client.Sync(ctx, gitsync.Remote{
		URL:    cfg.GitRemote,
		Branch: cfg.GitBranch,
		Token:  cfg.GitToken,
	})
	if err != nil {
		return err
	}
	log.Info().Str("head", res.Head).Bool("changed", res.Changed).Bool("cloned", res.Cloned).Msg("content synced")
	return nil
}

func runNew() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path, err := scaffold.NewPost(cfg.ContentDir, scaffold.PostData{
		Title:       CLI.New.Title,
		Slug:        CLI.New.Slug,
		Description: CLI.New.Description,
		Author:      cfg.Author,
		Tags:        CLI.New.Tags,
		Featured:    CLI.New.Featured,
		Draft:       CLI.New.Draft,
	})
	if err != nil {
		return err
	}
	fmt.Printf("created %s\n", path)
	return nil
}
