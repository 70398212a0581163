package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/flarexio/subjectexplorer"
	"github.com/flarexio/subjectexplorer/catalog"
	"github.com/flarexio/subjectexplorer/llm/openai"

	mcpE "github.com/flarexio/subjectexplorer/mcp"
	httpT "github.com/flarexio/subjectexplorer/transport/http"
	natsT "github.com/flarexio/subjectexplorer/transport/nats"
)

func main() {
	cmd := &cli.Command{
		Name:  "subject-explorer",
		Usage: "Subject Explorer service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "path",
				Usage: "Path to the Subject Explorer workspace",
			},
			&cli.StringFlag{
				Name:    "nats",
				Usage:   "NATS server URL (empty disables the NATS transport)",
				Sources: cli.EnvVars("NATS_URL"),
			},
			&cli.StringFlag{
				Name:  "http-addr",
				Usage: "HTTP server address",
				Value: ":8080",
			},
		},
		Action: run,
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		log.Fatal(err.Error())
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		path = filepath.Join(homeDir, ".flarex", "subjectexplorer")
	}

	log, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)

	f, err := os.Open(filepath.Join(path, "config.yaml"))
	if err != nil {
		return err
	}
	defer f.Close()

	var cfg subjectexplorer.Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return err
	}

	cfg.ApplyDefaults()

	dataset := cfg.Dataset
	if !filepath.IsAbs(dataset) {
		dataset = filepath.Join(path, dataset)
	}

	cat, err := catalog.Load(dataset)
	if err != nil {
		return err
	}

	log.Info("catalog loaded",
		zap.Int("subjects", cat.Len()),
		zap.Int("dimension", cat.Dimension()),
	)

	client, err := openai.NewClient(cfg.LLM)
	if err != nil {
		return err
	}

	svc := subjectexplorer.NewService(cfg, cat, client, client)
	defer svc.Close()

	svc = subjectexplorer.LoggingMiddleware(log)(svc)

	endpoints := subjectexplorer.EndpointSet{
		CreateSession:     subjectexplorer.CreateSessionEndpoint(svc),
		RemoveSession:     subjectexplorer.RemoveSessionEndpoint(svc),
		Chat:              subjectexplorer.ChatEndpoint(svc),
		Messages:          subjectexplorer.MessagesEndpoint(svc),
		Highlights:        subjectexplorer.HighlightsEndpoint(svc),
		ListSubjects:      subjectexplorer.ListSubjectsEndpoint(svc),
		SearchSubjects:    subjectexplorer.SearchSubjectsEndpoint(svc),
		SubjectInfo:       subjectexplorer.SubjectInfoEndpoint(svc),
		HighlightSubjects: subjectexplorer.HighlightSubjectsEndpoint(svc),
		CallTool:          subjectexplorer.CallToolEndpoint(svc),
	}

	natsURL := cmd.String("nats")
	if natsURL != "" {
		nc, err := nats.Connect(natsURL,
			nats.Name("Subject Explorer Server"),
		)

		if err != nil {
			return err
		}
		defer nc.Drain()

		srv, err := micro.AddService(nc, micro.Config{
			Name:    "subjectexplorer",
			Version: "1.0.0",
		})

		if err != nil {
			return err
		}
		defer srv.Stop()

		root := srv.AddGroup("subjectexplorer")
		natsT.AddEndpoints(root, endpoints)
	}

	r := gin.Default()
	httpT.AddRouters(r, endpoints)

	mcpEndpoints := make(map[mcp.MCPMethod]mcpE.MCPEndpoint)
	mcpEndpoints[mcp.MethodInitialize] = mcpE.InitializeEndpoint(svc)
	mcpEndpoints[mcp.MethodPing] = mcpE.PingEndpoint(svc)
	mcpEndpoints[mcp.MethodToolsList] = mcpE.ListToolsEndpoint(svc)
	mcpEndpoints[mcp.MethodToolsCall] = mcpE.CallToolEndpoint(svc)
	httpT.AddStreamableRouters(r, mcpEndpoints)

	httpAddr := cmd.String("http-addr")
	go r.Run(httpAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sign := <-quit

	log.Info("graceful shutdown", zap.String("signal", sign.String()))
	return nil
}
