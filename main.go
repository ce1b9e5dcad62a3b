package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	api "devtodo-backend/cmd/api"
	authRepo "devtodo-backend/internal/auth/repository"
	authUsecase "devtodo-backend/internal/auth/usecase"
	claudeRepo "devtodo-backend/internal/claude/repository"
	claudeUsecase "devtodo-backend/internal/claude/usecase"
	"devtodo-backend/internal/claude/watcher"
	dockerUsecase "devtodo-backend/internal/docker/usecase"
	gitUsecase "devtodo-backend/internal/git/usecase"
	"devtodo-backend/internal/scheduler"
	taskRepo "devtodo-backend/internal/task/repository"
	taskUsecase "devtodo-backend/internal/task/usecase"
	"devtodo-backend/pkg/ai"
	"devtodo-backend/pkg/calendar"
	"devtodo-backend/pkg/config"
	"devtodo-backend/pkg/database"
	"devtodo-backend/pkg/docker"
	"devtodo-backend/pkg/gmail"
	"devtodo-backend/pkg/googleauth"
	"devtodo-backend/pkg/n8n"
)

type stores struct {
	tasks taskRepo.TaskRepository
	repos taskRepo.GitRepoRepository
	users authRepo.UserRepository
}

func openStores(cfg *config.Config) (*stores, error) {
	if cfg.StoreDriver != "postgres" {
		log.Printf("[Store] Using in-memory store, data is lost on restart")
		return &stores{
			tasks: taskRepo.NewMemoryTaskRepository(),
			repos: taskRepo.NewMemoryGitRepoRepository(),
			users: authRepo.NewMemoryUserRepository(),
		}, nil
	}

	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		return nil, err
	}
	tasks, err := taskRepo.NewGormTaskRepository(db)
	if err != nil {
		return nil, err
	}
	repos, err := taskRepo.NewGormGitRepoRepository(db)
	if err != nil {
		return nil, err
	}
	users, err := authRepo.NewUserRepository(db)
	if err != nil {
		return nil, err
	}
	return &stores{tasks: tasks, repos: repos, users: users}, nil
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatal("Failed to generate JWT secret:", err)
	}
	return hex.EncodeToString(buf)
}

func main() {
	// Load configuration
	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Printf("[WARN] JWT_SECRET not set, using a random secret; tokens will not survive a restart")
		cfg.JWTSecret = randomSecret()
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatal("Failed to create data dir:", err)
	}

	store, err := openStores(cfg)
	if err != nil {
		log.Fatal("Failed to open store:", err)
	}

	// Runtime Ollama settings feed the classifier's Ollama backend
	settings := api.NewRuntimeSettings(cfg.OllamaBaseURL, cfg.OllamaModel)
	completer, err := ai.NewCompleter(ai.Config{
		Provider:        ai.ProviderType(cfg.AIProvider),
		LiteLLMURL:      cfg.LiteLLMURL,
		LiteLLMAPIKey:   cfg.LiteLLMAPIKey,
		LiteLLMModel:    cfg.LiteLLMModel,
		GeminiAPIKey:    cfg.GeminiApiKey,
		OllamaBaseURL:   cfg.OllamaBaseURL,
		OllamaModel:     cfg.OllamaModel,
		OllamaBaseURLFn: settings.OllamaBaseURL,
		OllamaModelFn:   settings.OllamaModel,
	})
	if err != nil {
		log.Fatal("Invalid AI configuration:", err)
	}
	classifier := ai.NewTaskClassifier(completer, cfg.ClassifyTimeout)
	log.Printf("[AI] Classifier ready (provider=%s)", cfg.AIProvider)

	// Tasks and git
	tasks := taskUsecase.NewTaskUsecase(store.tasks)
	matcher := gitUsecase.NewCommitMatcher(store.tasks, store.repos)

	// Claude transcripts and extracted tasks
	transcripts := claudeRepo.NewTranscriptRepository(cfg.ClaudeDataPath)
	documents := claudeRepo.NewDocumentRepository(cfg.DataDir)
	extraction := claudeUsecase.NewExtractor(transcripts, documents, classifier, claudeUsecase.ExtractorConfig{
		Limit: cfg.ExtractionLimit,
	})
	state := claudeUsecase.NewStateTracker(documents, tasks, extraction.Trigger)
	todos := claudeUsecase.NewTodoUsecase(claudeRepo.NewTodoRepository(cfg.ClaudeDataPath), documents)
	conversations := claudeUsecase.NewConversationUsecase(transcripts)

	pending := watcher.NewPendingActionsBuffer()
	chatWatcher := watcher.NewChatWatcher(pending)
	if err := chatWatcher.Watch(cfg.ClaudeChatsPath); err != nil {
		log.Printf("[Watcher] Not watching %s: %v", cfg.ClaudeChatsPath, err)
	}

	// Docker
	dockerClient := docker.NewClient(cfg.DockerSocket, cfg.DockerHost)
	urls, err := docker.LoadURLMap(cfg.ContainerURLsFile)
	if err != nil {
		log.Printf("[Docker] Ignoring container URL file: %v", err)
		urls = docker.URLMap{}
	}
	actions := dockerUsecase.NewActionLog()
	dockerUc := dockerUsecase.NewDockerUsecase(dockerClient, actions, urls)
	autoCompleter := dockerUsecase.NewAutoCompleter(dockerClient, actions, store.tasks)

	// Google and n8n
	google := googleauth.New(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI,
		filepath.Join(cfg.DataDir, googleauth.TokenFileName))
	if !google.Configured() {
		log.Printf("[WARN] Google OAuth not configured, Gmail and Calendar disabled")
	}
	n8nClient := n8n.NewClient(cfg.N8NAPIURL, cfg.N8NAPIKey)

	// Background jobs
	jobs := scheduler.New()
	jobs.Every("claude-extraction", cfg.ExtractionInterval, cfg.ExtractionInitialDelay, extraction.Extract)
	jobs.Every("docker-autocomplete", cfg.DockerAutocompleteInterval, cfg.DockerAutocompleteInterval, func(ctx context.Context) error {
		_, err := autoCompleter.Run(ctx)
		return err
	})

	handler := api.NewHandler(api.Services{
		Config:        cfg,
		Auth:          authUsecase.NewAuthUsecase(store.users, cfg),
		Tasks:         tasks,
		Repos:         store.repos,
		Commit:        matcher,
		Extraction:    extraction,
		State:         state,
		Todos:         todos,
		Conversations: conversations,
		ChatWatcher:   chatWatcher,
		Pending:       pending,
		Docker:        dockerUc,
		DockerEngine:  dockerClient,
		Google:        google,
		Emails:        gmail.NewService(google),
		Events:        calendar.NewService(google),
		Workflows:     n8nClient,
		Settings:      settings,
		Ollama:        ai.NewOllamaServiceWithGetters(settings.OllamaBaseURL, settings.OllamaModel),
	})

	server := handler.NewServer(":" + cfg.Port)
	go func() {
		log.Printf("[Server] DevTodo API listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[Server] Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[Server] Forced shutdown: %v", err)
	}
	jobs.Stop()
	_ = chatWatcher.Close()
}
