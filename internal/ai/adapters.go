package ai

import "context"

// Embedder binds a Client to one embedding configuration.
type Embedder struct {
	client *Client
	cfg    EmbeddingConfig
}

func NewEmbedder(client *Client, cfg EmbeddingConfig) *Embedder {
	return &Embedder{client: client, cfg: cfg}
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.client.Embed(ctx, e.cfg, text)
}

func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return e.client.EmbedBatch(ctx, e.cfg, texts)
}

// ChatClient binds a Client to one chat configuration.
type ChatClient struct {
	client *Client
	cfg    ChatConfig
}

func NewChatClient(client *Client, cfg ChatConfig) *ChatClient {
	return &ChatClient{client: client, cfg: cfg}
}

func (c *ChatClient) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	return c.client.Complete(ctx, c.cfg, messages)
}
