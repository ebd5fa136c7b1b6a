package service

import (
	"context"
	"encoding/json"
	"fmt"
	"lessonos_backend/internal/config"
	"lessonos_backend/internal/model"
	"lessonos_backend/internal/util"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// GeneratedSection AI 返回的单个小节
type GeneratedSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GeneratedLesson AI 返回的完整课程结构
type GeneratedLesson struct {
	Title    string             `json:"title"`
	Sections []GeneratedSection `json:"sections"`
}

// LessonGenerator 编排层消费的生成边界，便于测试时替换
type LessonGenerator interface {
	GenerateLesson(ctx context.Context, topic string, difficulty model.Difficulty, language string) (*GeneratedLesson, error)
	RewriteSection(ctx context.Context, language, content, selectedText, instruction string) (string, error)
}

// AIService 基于 OpenAI 兼容接口的课程内容生成
type AIService struct {
	client    *openai.Client
	modelName string
	timeout   time.Duration
}

func NewAIService(cfg config.AIConfig) *AIService {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &AIService{
		client:    openai.NewClientWithConfig(clientConfig),
		modelName: cfg.Model,
		timeout:   timeout,
	}
}

const markdownRules = `CRITICAL MARKDOWN RULES:
1. NEVER output empty code blocks.
2. ALWAYS specify a language for code blocks (e.g. ` + "```bash, ```go" + `).
3. Ensure code blocks contain actual code or commands.
4. Use proper heading levels (##, ###) for structure.
5. Ensure all Markdown is valid and well-formatted.`

// languageDirective 非英语课程的正文用目标语言，代码块和技术标识符保持英文
func languageDirective(language string) string {
	if language == "" || language == "English" {
		return ""
	}
	return fmt.Sprintf("CRITICAL: Write all prose and explanations in %s. However, keep all technical code blocks, commands, and variable names in English.\n\n", language)
}

func (s *AIService) GenerateLesson(ctx context.Context, topic string, difficulty model.Difficulty, language string) (*GeneratedLesson, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	systemPrompt := fmt.Sprintf(`You are a professional instructor across all fields.
Provide clear, detailed, and systematic technical explanations in %s.
Prioritize numerous real-life examples and practical analogies to ground theoretical concepts.
Be concise, accurate, and professional. Use structured Markdown for all content.

%s%s

Respond with a single JSON object of the shape:
{"title": "...", "sections": [{"title": "...", "content": "markdown"}]}`,
		language, languageDirective(language), markdownRules)

	userPrompt := fmt.Sprintf(`Create a comprehensive, structured lesson in %s about "%s" for a %s level audience.
The lesson should have a clear logical progression and consist of 4 to 6 sections.
Each section must be detailed, including practical code examples or analogies where applicable.`,
		language, topic, difficulty)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("AI request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, util.ErrEmptyGeneration
	}

	var generated GeneratedLesson
	raw := extractJSON(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &generated); err != nil {
		return nil, fmt.Errorf("AI returned malformed lesson JSON: %w", err)
	}

	if err := validateGeneratedLesson(&generated); err != nil {
		return nil, err
	}

	return &generated, nil
}

func (s *AIService) RewriteSection(ctx context.Context, language, content, selectedText, instruction string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	systemPrompt := fmt.Sprintf(`You are an expert technical editor working in %s.
You will be given a section of a lesson, a specific part of that text that the user has selected, and an instruction on how to modify that selection or the section as a whole.
Provide the ENTIRE updated content for the section in Markdown.
Maintain the existing tone and structure while incorporating the requested changes.

%s%s
6. Return ONLY the Markdown content for the section, no extra commentary.`,
		language, languageDirective(language), markdownRules)

	userPrompt := fmt.Sprintf(`Current Section Content:
%s

User Selected Text:
"%s"

Instruction:
"%s"

Return only the updated content for the entire section.`, content, selectedText, instruction)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("AI request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", util.ErrEmptyRewrite
	}

	newContent := strings.TrimSpace(resp.Choices[0].Message.Content)
	if newContent == "" {
		return "", util.ErrEmptyRewrite
	}

	return newContent, nil
}

// extractJSON 部分模型会把 JSON 包在 Markdown 代码块里，先剥掉围栏
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	}
	return strings.TrimSpace(raw)
}

// validateGeneratedLesson 标题非空，小节数在 4-6 之间且内容非空
func validateGeneratedLesson(lesson *GeneratedLesson) error {
	if strings.TrimSpace(lesson.Title) == "" || len(lesson.Sections) == 0 {
		return util.ErrEmptyGeneration
	}
	if len(lesson.Sections) < 4 || len(lesson.Sections) > 6 {
		return fmt.Errorf("AI returned %d sections, expected 4 to 6", len(lesson.Sections))
	}
	for i, section := range lesson.Sections {
		if strings.TrimSpace(section.Title) == "" || strings.TrimSpace(section.Content) == "" {
			return fmt.Errorf("AI returned empty section at position %d", i)
		}
	}
	return nil
}
