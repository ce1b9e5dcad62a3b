package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"devtodo-backend/internal/claude/domain"
	"devtodo-backend/internal/claude/repository"
	"devtodo-backend/pkg/ai"
	"devtodo-backend/pkg/fuzzy"
)

const (
	defaultExtractionLimit = 50
	classifyAttempts       = 2
	fallbackTitleLength    = 80
	maxTitleLength         = 150
	originalMessageLength  = 1500
	// triggeredRunTimeout bounds background runs started by Trigger
	triggeredRunTimeout = 30 * time.Minute
)

// ExtractorConfig tunes an Extractor; zero values select the defaults
type ExtractorConfig struct {
	// Limit is how many of the most recent candidates are classified
	Limit int
	// Actionable selects candidate messages
	Actionable Predicate
}

type extractor struct {
	transcripts repository.TranscriptRepository
	documents   repository.DocumentRepository
	classifier  Classifier
	limit       int
	actionable  Predicate
	now         func() time.Time

	// runMu keeps extraction runs from overlapping
	runMu sync.Mutex
	wg    sync.WaitGroup
}

// NewExtractor creates the chat task extractor
func NewExtractor(
	transcripts repository.TranscriptRepository,
	documents repository.DocumentRepository,
	classifier Classifier,
	cfg ExtractorConfig,
) ExtractionUsecase {
	if cfg.Limit <= 0 {
		cfg.Limit = defaultExtractionLimit
	}
	if cfg.Actionable == nil {
		cfg.Actionable = DefaultActionable
	}
	return &extractor{
		transcripts: transcripts,
		documents:   documents,
		classifier:  classifier,
		limit:       cfg.Limit,
		actionable:  cfg.Actionable,
		now:         time.Now,
	}
}

func (e *extractor) Document(ctx context.Context) (*domain.Document, error) {
	return e.documents.Load(ctx)
}

func (e *extractor) Trigger() {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), triggeredRunTimeout)
		defer cancel()
		if err := e.Extract(ctx); err != nil {
			log.Printf("[Extractor] Background extraction failed: %v", err)
		}
	}()
}

// Wait blocks until every run started by Trigger has finished
func (e *extractor) Wait() {
	e.wg.Wait()
}

func (e *extractor) Extract(ctx context.Context) error {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	log.Println("[Extractor] Extracting tasks from chats...")

	sessions, err := e.transcripts.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTranscriptsUnavailable, err)
	}

	current, err := e.documents.Load(ctx)
	if err != nil {
		return fmt.Errorf("load task state: %w", err)
	}

	candidates := collectCandidates(sessions, e.actionable)
	if len(candidates) > e.limit {
		candidates = candidates[:e.limit]
	}

	tasks := make([]domain.ExtractedTask, 0, len(candidates))
	accepted := make(map[string]int, len(candidates))
	skipped := 0

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return err
		}

		id := GenerateTaskID(c.content, c.project)
		if current.TaskState[id].Status == domain.StatusDismissed {
			skipped++
			continue
		}

		// The same message in another session of the project has the same id
		if i, ok := accepted[id]; ok {
			markSimilar(&tasks[i], c.sessionID)
			continue
		}

		classified := e.classify(ctx, c.content)

		duplicate := false
		for i := range tasks {
			if fuzzy.IsSameTask(tasks[i].Title, classified.Title) {
				markSimilar(&tasks[i], c.sessionID)
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}

		accepted[id] = len(tasks)
		tasks = append(tasks, domain.ExtractedTask{
			ID:               id,
			Title:            classified.Title,
			Description:      classified.Description,
			Context:          classified.Context,
			Category:         domain.Category(classified.Category),
			Topic:            classified.Topic,
			OriginalMessage:  truncate(c.content, originalMessageLength),
			Project:          c.project,
			Timestamp:        c.timestamp,
			SessionID:        c.sessionID,
			MessageIndex:     c.messageIndex,
			ChatTitle:        c.chatTitle,
			ConversationPath: c.path,
			SimilarCount:     1,
			RelatedSessions:  []string{c.sessionID},
		})
	}

	err = e.documents.Update(ctx, func(doc *domain.Document) error {
		// State may have changed while classifying; honor dismissals made meanwhile
		kept := make([]domain.ExtractedTask, 0, len(tasks))
		for _, task := range tasks {
			if doc.TaskState[task.ID].Status != domain.StatusDismissed {
				kept = append(kept, task)
			}
		}
		now := e.now()
		doc.Tasks = kept
		doc.LastUpdated = &now
		return nil
	})
	if err != nil {
		return fmt.Errorf("save extracted tasks: %w", err)
	}

	log.Printf("[Extractor] Extracted %d tasks from %d candidates (%d dismissed)", len(tasks), len(candidates), skipped)
	return nil
}

// classify asks the classifier up to classifyAttempts times and degrades to
// a research task titled after the raw message
func (e *extractor) classify(ctx context.Context, content string) ai.Classification {
	for attempt := 1; attempt <= classifyAttempts; attempt++ {
		result := e.classifier.Classify(ctx, ai.PromptTaskExtraction, content)
		if result.Kind == ai.ResultOK {
			return normalizeClassification(result.Classification)
		}
		if result.Err != nil {
			log.Printf("[Extractor] Classification attempt %d failed (%s): %v", attempt, result.Kind, result.Err)
		} else {
			log.Printf("[Extractor] Classification attempt %d failed (%s)", attempt, result.Kind)
		}
		if ctx.Err() != nil {
			break
		}
	}

	return ai.Classification{
		Title:    truncate(strings.ReplaceAll(content, "\n", " "), fallbackTitleLength),
		Category: string(domain.CategoryResearch),
		Topic:    domain.DefaultTopic,
	}
}

func normalizeClassification(c ai.Classification) ai.Classification {
	c.Title = truncate(c.Title, maxTitleLength)
	if !domain.Category(c.Category).Valid() {
		c.Category = string(domain.CategoryResearch)
	}
	if c.Topic == "" {
		c.Topic = domain.DefaultTopic
	}
	return c
}

func markSimilar(task *domain.ExtractedTask, sessionID string) {
	task.SimilarCount++
	for _, s := range task.RelatedSessions {
		if s == sessionID {
			return
		}
	}
	task.RelatedSessions = append(task.RelatedSessions, sessionID)
}
