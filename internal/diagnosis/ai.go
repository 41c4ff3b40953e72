package diagnosis

import (
	"context"
	"fmt"
	"strings"

	"servis-backend/internal/config"
	"servis-backend/internal/models"

	"github.com/sashabaranov/go-openai"
)

const systemPrompt = "Sen deneyimli bir oto servis ustasısın. Sana verilen araç bilgisi, " +
	"müşteri şikayeti ve arıza kodlarına bakarak olası arıza nedenlerini ve kontrol " +
	"edilmesi gereken parçaları kısa maddeler halinde Türkçe açıkla. Kesin teşhis " +
	"koyma, servis kontrolü öner."

// AIClient: arıza teşhisi için AI ağ geçidi. API anahtarı tanımlı değilse nil döner
// ve teşhis ucu devre dışı kalır.
type AIClient struct {
	client *openai.Client
	model  string
}

func NewAIClient(cfg *config.Config) *AIClient {
	if cfg.OpenAIAPIKey == "" {
		return nil
	}
	return &AIClient{
		client: openai.NewClient(cfg.OpenAIAPIKey),
		model:  cfg.OpenAIModel,
	}
}

// Suggest: hazırlanan istemi modele gönderir, öneri metnini döner.
// model boşsa config'deki varsayılan kullanılır (ayarlardan geçersiz kılınabilir).
func (a *AIClient) Suggest(ctx context.Context, model, prompt string) (string, error) {
	if model == "" {
		model = a.model
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("AI servisi çağrısı başarısız: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("AI servisi boş yanıt döndü")
	}

	return resp.Choices[0].Message.Content, nil
}

// buildPrompt: araç bilgisi + şikayet + arıza kodlarından tek istem metni üretir
func buildPrompt(brand, model string, year int, complaint string, codes []models.DTCCode, unknown []string) string {
	var b strings.Builder

	b.WriteString("Araç: ")
	if brand != "" || model != "" {
		fmt.Fprintf(&b, "%s %s", brand, model)
	} else {
		b.WriteString("bilinmiyor")
	}
	if year > 0 {
		fmt.Fprintf(&b, " (%d)", year)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Müşteri şikayeti: %s\n", complaint)

	if len(codes) > 0 || len(unknown) > 0 {
		b.WriteString("Okunan arıza kodları:\n")
		for _, code := range codes {
			fmt.Fprintf(&b, "- %s: %s\n", code.Code, code.Description)
		}
		for _, code := range unknown {
			fmt.Fprintf(&b, "- %s (sözlükte yok)\n", code)
		}
	}

	return b.String()
}
