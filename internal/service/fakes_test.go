package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/threaddesk/threaddesk/internal/domain"
	"github.com/threaddesk/threaddesk/internal/platform"
)

type fakeTicketRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{byID: map[int64]*domain.Ticket{}}
}

func (r *fakeTicketRepo) CreateWithName(_ context.Context, ticket *domain.Ticket, nameFor func(int64) string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	ticket.ID = r.nextID
	ticket.Name = nameFor(ticket.ID)
	clone := *ticket
	r.byID[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *fakeTicketRepo) GetByThread(_ context.Context, threadID int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.byID {
		if ticket.ThreadID == threadID {
			clone := *ticket
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *ticket
	r.byID[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) SaveParticipation(_ context.Context, ticket *domain.Ticket, participant *domain.TicketParticipant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	clone := *ticket
	clone.Participants = append([]domain.TicketParticipant{}, stored.Participants...)
	if participant != nil {
		exists := false
		for _, p := range clone.Participants {
			if p.UserID == participant.UserID {
				exists = true
				break
			}
		}
		if !exists {
			clone.Participants = append(clone.Participants, *participant)
		}
	}
	r.byID[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) ListOpen(_ context.Context) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Ticket
	for _, ticket := range r.byID {
		if ticket.Status == domain.TicketStatusOpen {
			result = append(result, *ticket)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type fakeForumRepo struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*domain.Forum
	byChannel map[int64]uuid.UUID
}

func newFakeForumRepo() *fakeForumRepo {
	return &fakeForumRepo{byID: map[uuid.UUID]*domain.Forum{}, byChannel: map[int64]uuid.UUID{}}
}

func (r *fakeForumRepo) Create(_ context.Context, forum *domain.Forum) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *forum
	r.byID[forum.ID] = &clone
	r.byChannel[forum.ChannelID] = forum.ID
	return nil
}

func (r *fakeForumRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Forum, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	forum, ok := r.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *forum
	return &clone, nil
}

func (r *fakeForumRepo) GetByChannel(_ context.Context, channelID int64) (*domain.Forum, error) {
	r.mu.Lock()
	id, ok := r.byChannel[channelID]
	r.mu.Unlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(context.Background(), id)
}

func (r *fakeForumRepo) List(_ context.Context) ([]domain.Forum, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Forum
	for _, forum := range r.byID {
		result = append(result, *forum)
	}
	return result, nil
}

func (r *fakeForumRepo) AttachManager(_ context.Context, forumID, managerID uuid.UUID) error {
	return nil
}

func (r *fakeForumRepo) AddPracticalTag(_ context.Context, tag *domain.PracticalTag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	forum, ok := r.byID[tag.ForumID]
	if !ok {
		return pgx.ErrNoRows
	}
	forum.PracticalTags = append(forum.PracticalTags, *tag)
	return nil
}

type fakeTeamRepo struct {
	mu    sync.Mutex
	teams []domain.Team
}

func (r *fakeTeamRepo) Create(_ context.Context, team *domain.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.teams = append(r.teams, *team)
	return nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, team := range r.teams {
		if team.ID == id {
			clone := team
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTeamRepo) List(_ context.Context) ([]domain.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Team{}, r.teams...), nil
}

type fakeManagerRepo struct {
	mu       sync.Mutex
	managers []domain.Manager
}

func (r *fakeManagerRepo) Create(_ context.Context, manager *domain.Manager) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.managers = append(r.managers, *manager)
	return nil
}

func (r *fakeManagerRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Manager, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, manager := range r.managers {
		if manager.ID == id {
			clone := manager
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeManagerRepo) List(_ context.Context) ([]domain.Manager, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Manager{}, r.managers...), nil
}

type fakeTraceConfigRepo struct {
	mu      sync.Mutex
	configs []domain.TraceConfig
}

func (r *fakeTraceConfigRepo) Create(_ context.Context, config *domain.TraceConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs = append(r.configs, *config)
	return nil
}

func (r *fakeTraceConfigRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.TraceConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, config := range r.configs {
		if config.ID == id {
			clone := config
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTraceConfigRepo) FindByTag(_ context.Context, guildID int64, tag string) ([]domain.TraceConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TraceConfig
	for _, config := range r.configs {
		if config.GuildID == guildID && config.Tag == tag {
			result = append(result, config)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FromDateTime.Before(result[j].FromDateTime) })
	return result, nil
}

func (r *fakeTraceConfigRepo) ListByGuild(_ context.Context, guildID int64) ([]domain.TraceConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TraceConfig
	for _, config := range r.configs {
		if config.GuildID == guildID {
			result = append(result, config)
		}
	}
	return result, nil
}

func (r *fakeTraceConfigRepo) AttachManager(_ context.Context, configID, managerID uuid.UUID) error {
	return nil
}

type fakeTraceTicketRepo struct {
	mu        sync.Mutex
	byChannel map[int64]*domain.TraceTicket
}

func newFakeTraceTicketRepo() *fakeTraceTicketRepo {
	return &fakeTraceTicketRepo{byChannel: map[int64]*domain.TraceTicket{}}
}

func (r *fakeTraceTicketRepo) Create(_ context.Context, ticket *domain.TraceTicket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *ticket
	r.byChannel[ticket.ChannelID] = &clone
	return nil
}

func (r *fakeTraceTicketRepo) GetByChannel(_ context.Context, channelID int64) (*domain.TraceTicket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.byChannel[channelID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *fakeTraceTicketRepo) Update(_ context.Context, ticket *domain.TraceTicket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byChannel[ticket.ChannelID]
	if !ok {
		return pgx.ErrNoRows
	}
	clone := *ticket
	*stored = clone
	return nil
}

type sentRecord struct {
	ChannelID int64
	Message   platform.Message
}

type createdChannel struct {
	GuildID    int64
	CategoryID int64
	Name       string
	Overrides  []platform.Override
}

type createdCategory struct {
	GuildID   int64
	Name      string
	Position  int
	Overrides []platform.Override
}

// fakeClient records adapter calls for assertions.
type fakeClient struct {
	mu     sync.Mutex
	selfID int64
	nextID int64

	sent       []sentRecord
	edits      []sentRecord
	dms        map[int64][]platform.Message
	renames    map[int64]string
	archived   map[int64][2]bool
	deleted    []int64
	categories map[string][]platform.CategoryInfo
	channels   []createdChannel
	voice      []createdChannel
	created    []createdCategory
	modals     []platform.Modal
}

func newFakeClient(selfID int64) *fakeClient {
	return &fakeClient{
		selfID:     selfID,
		nextID:     5000,
		dms:        map[int64][]platform.Message{},
		renames:    map[int64]string{},
		archived:   map[int64][2]bool{},
		categories: map[string][]platform.CategoryInfo{},
	}
}

func (c *fakeClient) id() int64 {
	c.nextID++
	return c.nextID
}

func (c *fakeClient) SelfUserID() int64 { return c.selfID }

func (c *fakeClient) SendMessage(_ context.Context, channelID int64, msg platform.Message) (*platform.SentMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, sentRecord{ChannelID: channelID, Message: msg})
	return &platform.SentMessage{MessageID: c.id(), ChannelID: channelID}, nil
}

func (c *fakeClient) EditMessage(_ context.Context, channelID, messageID int64, msg platform.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.edits = append(c.edits, sentRecord{ChannelID: channelID, Message: msg})
	return nil
}

func (c *fakeClient) SendDirectMessage(_ context.Context, userID int64, msg platform.Message) (*platform.SentMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dms[userID] = append(c.dms[userID], msg)
	return &platform.SentMessage{MessageID: c.id()}, nil
}

func (c *fakeClient) ArchiveMessages(_ context.Context, sourceChannelID, logChannelID int64, title string) error {
	return nil
}

func (c *fakeClient) RenameChannel(_ context.Context, channelID int64, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renames[channelID] = name
	return nil
}

func (c *fakeClient) SetArchivedLocked(_ context.Context, channelID int64, archived, locked bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.archived[channelID] = [2]bool{archived, locked}
	return nil
}

func (c *fakeClient) DeleteChannel(_ context.Context, channelID int64, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, channelID)
	return nil
}

func (c *fakeClient) CategoriesByName(_ context.Context, guildID int64, name string) ([]platform.CategoryInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]platform.CategoryInfo{}, c.categories[categoryKey(guildID, name)]...), nil
}

func (c *fakeClient) CreateCategory(_ context.Context, guildID int64, name string, position int, overrides []platform.Override) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.id()
	c.created = append(c.created, createdCategory{GuildID: guildID, Name: name, Position: position, Overrides: overrides})
	key := categoryKey(guildID, name)
	c.categories[key] = append(c.categories[key], platform.CategoryInfo{ID: id, Name: name, Position: position})
	return id, nil
}

func (c *fakeClient) CreateTextChannel(_ context.Context, guildID, categoryID int64, name string, overrides []platform.Override) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channels = append(c.channels, createdChannel{GuildID: guildID, CategoryID: categoryID, Name: name, Overrides: overrides})
	return c.id(), nil
}

func (c *fakeClient) CreateVoiceChannel(_ context.Context, guildID, categoryID int64, name string, overrides []platform.Override) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.voice = append(c.voice, createdChannel{GuildID: guildID, CategoryID: categoryID, Name: name, Overrides: overrides})
	return c.id(), nil
}

func (c *fakeClient) GrantPermission(_ context.Context, channelID int64, override platform.Override) error {
	return nil
}

func (c *fakeClient) PostModal(_ context.Context, interactionID string, modal platform.Modal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.modals = append(c.modals, modal)
	return nil
}

func (c *fakeClient) RegisterCommands(_ context.Context, commands []platform.Command) error {
	return nil
}

func (c *fakeClient) messagesTo(channelID int64) []platform.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	var result []platform.Message
	for _, record := range c.sent {
		if record.ChannelID == channelID {
			result = append(result, record.Message)
		}
	}
	return result
}

func categoryKey(guildID int64, name string) string {
	return fmt.Sprintf("%d:%s", guildID, name)
}

// fakeLocker always grants the mutex; the once guard fires a configurable
// number of times.
type fakeLocker struct {
	mu        sync.Mutex
	onceKeys  map[string]bool
	lockCalls int
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{onceKeys: map[string]bool{}}
}

func (l *fakeLocker) TryLock(_ context.Context, key string, _ time.Duration) (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lockCalls++
	return func() {}, true
}

func (l *fakeLocker) Once(_ context.Context, key string, _ time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.onceKeys[key] {
		return false
	}
	l.onceKeys[key] = true
	return true
}
