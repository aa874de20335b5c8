// Package platform defines the chat-platform adapter surface the core needs.
// A real gateway binding implements Client; the core never talks to the wire
// protocol directly.
package platform

import (
	"context"
	"fmt"
	"time"
)

// Permission names a channel permission understood by the platform.
type Permission string

const (
	PermViewChannel         Permission = "VIEW_CHANNEL"
	PermSendMessages        Permission = "SEND_MESSAGES"
	PermMessageHistory      Permission = "MESSAGE_HISTORY"
	PermManageChannel       Permission = "MANAGE_CHANNEL"
	PermManageThreads       Permission = "MANAGE_THREADS"
	PermVoiceConnect        Permission = "VOICE_CONNECT"
	PermVoiceSpeak          Permission = "VOICE_SPEAK"
	PermVoiceStream         Permission = "VOICE_STREAM"
	PermVoiceSoundboard     Permission = "VOICE_SOUNDBOARD"
	PermVoiceExternalSounds Permission = "VOICE_EXTERNAL_SOUNDS"
)

// Permission sets granted on provisioned trace channels.
var (
	ManagerPermissions = []Permission{
		PermViewChannel, PermSendMessages, PermMessageHistory, PermManageChannel, PermManageThreads,
	}
	UserTextPermissions  = []Permission{PermViewChannel, PermSendMessages, PermMessageHistory}
	UserVoicePermissions = []Permission{PermViewChannel, PermVoiceConnect, PermVoiceSpeak, PermVoiceStream}
	UserVoiceDenied      = []Permission{PermVoiceSoundboard, PermSendMessages, PermVoiceExternalSounds}
)

// Override grants or denies permissions for a role or a user on a channel.
// Exactly one of RoleID/UserID is set.
type Override struct {
	RoleID int64
	UserID int64
	Allow  []Permission
	Deny   []Permission
}

// EmbedField is a titled value inside an embed.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a rich message block.
type Embed struct {
	Title       string
	Description string
	Color       int
	AuthorName  string
	Fields      []EmbedField
	FooterText  string
	ImageURL    string
	Timestamp   time.Time
}

// Button is an action row component. URL buttons link out; ID buttons round
// back through the dispatcher.
type Button struct {
	ID    string
	Label string
	URL   string
}

// Message is the outbound payload for Send/Edit calls.
type Message struct {
	Content string
	Embed   *Embed
	Buttons []Button
}

// SentMessage references a delivered message.
type SentMessage struct {
	MessageID int64
	ChannelID int64
}

// CategoryInfo describes an existing category channel.
type CategoryInfo struct {
	ID           int64
	Name         string
	Position     int
	ChannelCount int
}

// ModalField is a text input inside a modal.
type ModalField struct {
	ID          string
	Label       string
	Placeholder string
	Required    bool
	Paragraph   bool
}

// Modal is an input form presented to the acting user.
type Modal struct {
	ID     string
	Title  string
	Fields []ModalField
}

// CommandOption describes a slash-command option.
type CommandOption struct {
	Name         string
	Description  string
	Required     bool
	Autocomplete bool
}

// Command describes a slash command to register.
type Command struct {
	Name        string
	Description string
	Options     []CommandOption
}

// Client is the core-to-adapter contract. All side effects on the chat
// platform go through it.
type Client interface {
	SelfUserID() int64

	SendMessage(ctx context.Context, channelID int64, msg Message) (*SentMessage, error)
	EditMessage(ctx context.Context, channelID, messageID int64, msg Message) error
	SendDirectMessage(ctx context.Context, userID int64, msg Message) (*SentMessage, error)
	// ArchiveMessages copies the full message log of the source channel into a
	// titled thread under the log channel.
	ArchiveMessages(ctx context.Context, sourceChannelID, logChannelID int64, title string) error

	RenameChannel(ctx context.Context, channelID int64, name string) error
	SetArchivedLocked(ctx context.Context, channelID int64, archived, locked bool) error
	DeleteChannel(ctx context.Context, channelID int64, reason string) error

	CategoriesByName(ctx context.Context, guildID int64, name string) ([]CategoryInfo, error)
	CreateCategory(ctx context.Context, guildID int64, name string, position int, overrides []Override) (int64, error)
	CreateTextChannel(ctx context.Context, guildID, categoryID int64, name string, overrides []Override) (int64, error)
	CreateVoiceChannel(ctx context.Context, guildID, categoryID int64, name string, overrides []Override) (int64, error)
	GrantPermission(ctx context.Context, channelID int64, override Override) error

	PostModal(ctx context.Context, interactionID string, modal Modal) error
	RegisterCommands(ctx context.Context, commands []Command) error
}

// JumpURL builds the deep link to a channel.
func JumpURL(guildID, channelID int64) string {
	return fmt.Sprintf("https://discord.com/channels/%d/%d", guildID, channelID)
}

// Mention renders a user mention.
func Mention(userID int64) string {
	return fmt.Sprintf("<@%d>", userID)
}

// ChannelMention renders a channel mention.
func ChannelMention(channelID int64) string {
	return fmt.Sprintf("<#%d>", channelID)
}
