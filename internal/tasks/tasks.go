package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"
	"text/template"
	"time"

	"github.com/hibiken/asynq"
	"github.com/nfnt/resize"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hasanRafi2002/asgn-12-server/internal/config"
	"github.com/hasanRafi2002/asgn-12-server/internal/email"
	"github.com/hasanRafi2002/asgn-12-server/internal/services"
	"github.com/hasanRafi2002/asgn-12-server/internal/storage"
	"github.com/hasanRafi2002/asgn-12-server/internal/utils"
)

// TaskType defines the type of a background task.
const (
	TypeEmailDelivery = "email:deliver"
	TypeImageProcess  = "image:process"
)

// Queue names.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
	QueueImages   = "images"
)

// --- Task Client (Enqueuing tasks) ---

func redisOpt(rdb *redis.Client) asynq.RedisClientOpt {
	opts := rdb.Options()
	return asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
}

func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(redisOpt(rdb))
}

type taskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Enqueuer implements services.ITaskQueue on top of an asynq client.
type Enqueuer struct {
	client taskClient
	locale string
}

var _ services.ITaskQueue = (*Enqueuer)(nil)

// NewEnqueuer wraps client. locale is stamped on every email task.
func NewEnqueuer(client taskClient, locale string) *Enqueuer {
	return &Enqueuer{client: client, locale: locale}
}

func (e *Enqueuer) EnqueueEmail(ctx context.Context, to, templateID string, data map[string]interface{}) error {
	payload, err := json.Marshal(EmailTaskPayload{To: to, TemplateID: templateID, Locale: e.locale, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal email task: %w", err)
	}
	_, err = e.client.EnqueueContext(ctx, asynq.NewTask(TypeEmailDelivery, payload),
		asynq.Queue(QueueDefault), asynq.MaxRetry(5), asynq.Timeout(30*time.Second))
	if err != nil {
		return fmt.Errorf("failed to enqueue email task: %w", err)
	}
	return nil
}

func (e *Enqueuer) EnqueueImageProcess(ctx context.Context, s3Key, propertyID string) error {
	payload, err := json.Marshal(ImageTaskPayload{S3Key: s3Key, PropertyID: propertyID})
	if err != nil {
		return fmt.Errorf("failed to marshal image task: %w", err)
	}
	_, err = e.client.EnqueueContext(ctx, asynq.NewTask(TypeImageProcess, payload),
		asynq.Queue(QueueImages), asynq.MaxRetry(3), asynq.Timeout(2*time.Minute))
	if err != nil {
		return fmt.Errorf("failed to enqueue image task: %w", err)
	}
	return nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg                  *config.Config
	emailSender          email.Sender
	storageService       storage.IS3Storage
	emailTemplateService services.IEmailTemplateService
}

func NewTaskProcessor(
	cfg *config.Config,
	emailSender email.Sender,
	storageService storage.IS3Storage,
	emailTemplateService services.IEmailTemplateService,
) *TaskProcessor {
	return &TaskProcessor{
		cfg:                  cfg,
		emailSender:          emailSender,
		storageService:       storageService,
		emailTemplateService: emailTemplateService,
	}
}

// SetupServer configures an Asynq server and its handlers for the given worker
// roles. It returns nils when neither role is enabled. The caller runs the server.
func SetupServer(rdb *redis.Client, processor *TaskProcessor, isImageWorker bool, isBgWorker bool) (*asynq.Server, *asynq.ServeMux) {
	if !isBgWorker && !isImageWorker {
		return nil, nil
	}

	queues := map[string]int{}
	mux := asynq.NewServeMux()

	if isBgWorker {
		queues[QueueCritical] = 6
		queues[QueueDefault] = 3
		queues[QueueLow] = 1
		mux.HandleFunc(TypeEmailDelivery, processor.HandleEmailDeliveryTask)
		utils.Logger().Info("registered background task handlers")
	}

	if isImageWorker {
		queues[QueueImages] = 5
		mux.HandleFunc(TypeImageProcess, processor.HandleImageProcessTask)
		utils.Logger().Info("registered image processing task handlers")
	}

	srv := asynq.NewServer(
		redisOpt(rdb),
		asynq.Config{
			Queues: queues,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				utils.Logger().Error("asynq task failed",
					zap.String("type", task.Type()),
					zap.ByteString("payload", task.Payload()),
					zap.Error(err))
			}),
		},
	)
	return srv, mux
}

// --- Task Handlers ---

// EmailTaskPayload is the payload of an email:deliver task.
type EmailTaskPayload struct {
	To         string                 `json:"to"`
	TemplateID string                 `json:"templateId"`
	Locale     string                 `json:"locale,omitempty"`
	Data       map[string]interface{} `json:"data"`
}

func renderTemplate(name, src string, data map[string]interface{}) (string, error) {
	tmpl, err := template.New(name).Parse(src)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// HandleEmailDeliveryTask renders a stored template and hands the message to the sender.
func (p *TaskProcessor) HandleEmailDeliveryTask(ctx context.Context, t *asynq.Task) error {
	var payload EmailTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal email task payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.To == "" {
		return fmt.Errorf("email task has no recipient: %w", asynq.SkipRetry)
	}

	locale := payload.Locale
	if locale == "" {
		locale = p.cfg.EmailLocale
	}
	if locale == "" {
		locale = "en-US"
	}

	tmpl, err := p.emailTemplateService.GetTemplate(ctx, payload.TemplateID, locale)
	if err != nil {
		utils.Logger().Error("failed to load email template",
			zap.String("template", payload.TemplateID), zap.String("locale", locale), zap.Error(err))
		return fmt.Errorf("email template not found: %w", asynq.SkipRetry)
	}

	subject, err := renderTemplate(payload.TemplateID+":subject", tmpl.Subject, payload.Data)
	if err != nil {
		return fmt.Errorf("failed to render subject of %s: %v: %w", payload.TemplateID, err, asynq.SkipRetry)
	}
	body, err := renderTemplate(payload.TemplateID+":body", tmpl.Body, payload.Data)
	if err != nil {
		return fmt.Errorf("failed to render body of %s: %v: %w", payload.TemplateID, err, asynq.SkipRetry)
	}

	fromAddress := p.cfg.SmtpFromAddress
	if fromAddress == "" {
		fromAddress = "noreply@example.com"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("To: %s\r\n", payload.To))
	sb.WriteString(fmt.Sprintf("From: %s\r\n", fromAddress))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	sb.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	sb.WriteString("\r\n")

	msg := email.Message{
		To:         []string{payload.To},
		Subject:    subject,
		TemplateID: payload.TemplateID,
		Raw:        []byte(sb.String()),
	}
	if err := p.emailSender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send %s email: %w", payload.TemplateID, err)
	}

	utils.Logger().Info("email task processed", zap.String("to", payload.To), zap.String("template", payload.TemplateID))
	return nil
}

// ImageTaskPayload is the payload of an image:process task.
type ImageTaskPayload struct {
	S3Key      string `json:"s3Key"`
	PropertyID string `json:"propertyId"`
}

// HandleImageProcessTask shrinks an uploaded listing image to the configured bounds.
// The object is rewritten in place so the listing's image URL stays valid.
func (p *TaskProcessor) HandleImageProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ImageTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal image task payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.S3Key == "" {
		return fmt.Errorf("image task has no key: %w", asynq.SkipRetry)
	}
	log := utils.Logger().With(zap.String("key", payload.S3Key), zap.String("propertyId", payload.PropertyID))

	maxSizeBytes := int64(p.cfg.ImageMaxSizeMB) * 1024 * 1024
	imgData, contentType, err := p.storageService.GetObject(ctx, payload.S3Key, maxSizeBytes)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrObjectTooLarge) {
			log.Warn("skipping image", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return fmt.Errorf("failed to download image: %w", err)
	}

	img, format, err := image.Decode(bytes.NewReader(imgData))
	if err != nil {
		log.Warn("undecodable image", zap.Error(err))
		return fmt.Errorf("unsupported image format or corrupt image: %w", asynq.SkipRetry)
	}

	maxDim := uint(p.cfg.ImageMaxDimension)
	width, height := img.Bounds().Dx(), img.Bounds().Dy()
	if uint(width) <= maxDim && uint(height) <= maxDim {
		log.Debug("image within bounds", zap.String("format", format), zap.Int("width", width), zap.Int("height", height))
		return nil
	}

	resized := resize.Thumbnail(maxDim, maxDim, img, resize.Lanczos3)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("failed to re-encode resized image: %w", err)
	}
	if int64(buf.Len()) > maxSizeBytes {
		return fmt.Errorf("resized image still exceeds max size: %w", asynq.SkipRetry)
	}

	if err := p.storageService.PutObject(ctx, payload.S3Key, buf.Bytes(), "image/jpeg"); err != nil {
		return fmt.Errorf("failed to upload processed image: %w", err)
	}

	log.Info("image resized",
		zap.String("originalType", contentType),
		zap.Int("width", resized.Bounds().Dx()),
		zap.Int("height", resized.Bounds().Dy()))
	return nil
}
