package platform

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// LogClient is a Client that records every adapter call without touching the
// platform. It stands in until a gateway binding is wired and keeps local
// runs observable.
type LogClient struct {
	logger *zap.Logger
	selfID int64
	nextID atomic.Int64
}

// NewLogClient builds a LogClient issuing synthetic channel/message ids.
func NewLogClient(logger *zap.Logger, selfID int64) *LogClient {
	c := &LogClient{logger: logger, selfID: selfID}
	c.nextID.Store(1_000_000)
	return c
}

func (c *LogClient) id() int64 { return c.nextID.Add(1) }

func (c *LogClient) SelfUserID() int64 { return c.selfID }

func (c *LogClient) SendMessage(_ context.Context, channelID int64, msg Message) (*SentMessage, error) {
	id := c.id()
	c.logger.Info("sendMessage", zap.Int64("channel", channelID), zap.String("content", msg.Content), zap.Int64("message", id))
	return &SentMessage{MessageID: id, ChannelID: channelID}, nil
}

func (c *LogClient) EditMessage(_ context.Context, channelID, messageID int64, _ Message) error {
	c.logger.Info("editMessage", zap.Int64("channel", channelID), zap.Int64("message", messageID))
	return nil
}

func (c *LogClient) SendDirectMessage(_ context.Context, userID int64, msg Message) (*SentMessage, error) {
	id := c.id()
	c.logger.Info("sendDirectMessage", zap.Int64("user", userID), zap.String("content", msg.Content))
	return &SentMessage{MessageID: id}, nil
}

func (c *LogClient) ArchiveMessages(_ context.Context, sourceChannelID, logChannelID int64, title string) error {
	c.logger.Info("archiveMessages",
		zap.Int64("source", sourceChannelID), zap.Int64("log", logChannelID), zap.String("title", title))
	return nil
}

func (c *LogClient) RenameChannel(_ context.Context, channelID int64, name string) error {
	c.logger.Info("renameChannel", zap.Int64("channel", channelID), zap.String("name", name))
	return nil
}

func (c *LogClient) SetArchivedLocked(_ context.Context, channelID int64, archived, locked bool) error {
	c.logger.Info("setArchivedLocked",
		zap.Int64("channel", channelID), zap.Bool("archived", archived), zap.Bool("locked", locked))
	return nil
}

func (c *LogClient) DeleteChannel(_ context.Context, channelID int64, reason string) error {
	c.logger.Info("deleteChannel", zap.Int64("channel", channelID), zap.String("reason", reason))
	return nil
}

func (c *LogClient) CategoriesByName(_ context.Context, guildID int64, name string) ([]CategoryInfo, error) {
	c.logger.Info("categoriesByName", zap.Int64("guild", guildID), zap.String("name", name))
	return nil, nil
}

func (c *LogClient) CreateCategory(_ context.Context, guildID int64, name string, position int, _ []Override) (int64, error) {
	id := c.id()
	c.logger.Info("createCategory",
		zap.Int64("guild", guildID), zap.String("name", name), zap.Int("position", position), zap.Int64("category", id))
	return id, nil
}

func (c *LogClient) CreateTextChannel(_ context.Context, guildID, categoryID int64, name string, _ []Override) (int64, error) {
	id := c.id()
	c.logger.Info("createTextChannel",
		zap.Int64("guild", guildID), zap.Int64("category", categoryID), zap.String("name", name), zap.Int64("channel", id))
	return id, nil
}

func (c *LogClient) CreateVoiceChannel(_ context.Context, guildID, categoryID int64, name string, _ []Override) (int64, error) {
	id := c.id()
	c.logger.Info("createVoiceChannel",
		zap.Int64("guild", guildID), zap.Int64("category", categoryID), zap.String("name", name), zap.Int64("channel", id))
	return id, nil
}

func (c *LogClient) GrantPermission(_ context.Context, channelID int64, override Override) error {
	c.logger.Info("grantPermission",
		zap.Int64("channel", channelID), zap.Int64("role", override.RoleID), zap.Int64("user", override.UserID))
	return nil
}

func (c *LogClient) PostModal(_ context.Context, interactionID string, modal Modal) error {
	c.logger.Info("postModal", zap.String("interaction", interactionID), zap.String("modal", modal.ID))
	return nil
}

func (c *LogClient) RegisterCommands(_ context.Context, commands []Command) error {
	c.logger.Info("registerCommands", zap.Int("count", len(commands)))
	return nil
}
