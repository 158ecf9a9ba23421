package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jose-valero/erlc-compliance-bot/internal/domain"
	"github.com/jose-valero/erlc-compliance-bot/internal/infra/storage"
)

type fakeGame struct {
	mu       sync.Mutex
	players  map[string][]domain.Player
	vehicles map[string][]domain.Vehicle
	status   domain.ServerStatus
	queue    int
	failFor  map[string]error
	delay    time.Duration
	commands map[string][]string
	calls    int
	// entered and gate, when set, hold ServerPlayers until gate is closed.
	entered chan struct{}
	gate    chan struct{}
}

func newFakeGame() *fakeGame {
	return &fakeGame{
		players:  map[string][]domain.Player{},
		vehicles: map[string][]domain.Vehicle{},
		failFor:  map[string]error{},
		commands: map[string][]string{},
	}
}

func (f *fakeGame) ServerPlayers(ctx context.Context, guildID string) ([]domain.Player, error) {
	f.mu.Lock()
	f.calls++
	delay, err, players := f.delay, f.failFor[guildID], f.players[guildID]
	entered, gate := f.entered, f.gate
	f.mu.Unlock()
	if gate != nil {
		entered <- struct{}{}
		<-gate
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return players, err
}

func (f *fakeGame) ServerVehicles(_ context.Context, guildID string) ([]domain.Vehicle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vehicles[guildID], f.failFor[guildID]
}

func (f *fakeGame) ServerStatus(_ context.Context, guildID string) (domain.ServerStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.failFor[guildID]
}

func (f *fakeGame) ServerQueue(_ context.Context, guildID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queue, f.failFor[guildID]
}

func (f *fakeGame) RunCommand(_ context.Context, guildID, command string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands[guildID] = append(f.commands[guildID], command)
	return nil
}

func (f *fakeGame) commandsFor(guildID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.commands[guildID]...)
}

type fakePlatform struct {
	mu         sync.Mutex
	members    map[string][]domain.Member
	roles      map[string]map[string]bool
	channels   map[string]string
	searchable map[string]domain.Member
	failRole   bool

	added    []string
	removed  []string
	dms      []*discordgo.MessageEmbed
	messages map[string][]*discordgo.MessageSend
	renames  map[string]int
	searches int
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		members:    map[string][]domain.Member{},
		roles:      map[string]map[string]bool{},
		channels:   map[string]string{},
		searchable: map[string]domain.Member{},
		messages:   map[string][]*discordgo.MessageSend{},
		renames:    map[string]int{},
	}
}

func (p *fakePlatform) BotID() string { return "bot" }

func (p *fakePlatform) GuildName(_ context.Context, guildID string) string { return "Guild " + guildID }

func (p *fakePlatform) GuildMembers(_ context.Context, guildID string) ([]domain.Member, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.members[guildID], nil
}

func (p *fakePlatform) Member(_ context.Context, guildID, userID string) (*domain.Member, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range p.members[guildID] {
		if m.ID == userID {
			return &m, nil
		}
	}
	return nil, ErrMemberNotFound
}

func (p *fakePlatform) SearchMembers(_ context.Context, _, query string, _ int) ([]domain.Member, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.searches++
	if m, ok := p.searchable[query]; ok {
		return []domain.Member{m}, nil
	}
	return nil, nil
}

func (p *fakePlatform) HasRole(_ context.Context, guildID, roleID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.roles[guildID][roleID]
}

func (p *fakePlatform) HasChannel(_ context.Context, channelID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.channels[channelID]
	return ok
}

func (p *fakePlatform) AddRole(_ context.Context, _, userID, roleID, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failRole {
		return fmt.Errorf("discord unavailable")
	}
	p.added = append(p.added, userID+":"+roleID)
	return nil
}

func (p *fakePlatform) RemoveRole(_ context.Context, _, userID, roleID, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failRole {
		return fmt.Errorf("discord unavailable")
	}
	p.removed = append(p.removed, userID+":"+roleID)
	return nil
}

func (p *fakePlatform) SendDM(_ context.Context, _ string, embed *discordgo.MessageEmbed) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dms = append(p.dms, embed)
	return nil
}

func (p *fakePlatform) SendMessage(_ context.Context, channelID string, msg *discordgo.MessageSend) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages[channelID] = append(p.messages[channelID], msg)
	return nil
}

func (p *fakePlatform) ChannelName(_ context.Context, channelID string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	name, ok := p.channels[channelID]
	if !ok {
		return "", fmt.Errorf("unknown channel %s", channelID)
	}
	return name, nil
}

func (p *fakePlatform) RenameChannel(_ context.Context, channelID, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.channels[channelID] = name
	p.renames[channelID]++
	return nil
}

type fakeSettings struct {
	guilds []domain.GuildSettings
}

func (f *fakeSettings) DiscordCheckGuilds(context.Context, domain.GuildFilter) ([]domain.GuildSettings, error) {
	return f.guilds, nil
}

func (f *fakeSettings) VehicleRestrictionGuilds(context.Context, domain.GuildFilter) ([]domain.GuildSettings, error) {
	return f.guilds, nil
}

func (f *fakeSettings) StatisticsGuilds(context.Context, domain.GuildFilter) ([]domain.GuildSettings, error) {
	return f.guilds, nil
}

func (f *fakeSettings) Get(_ context.Context, guildID string) (domain.GuildSettings, error) {
	for _, g := range f.guilds {
		if g.GuildID == guildID {
			return g, nil
		}
	}
	return domain.GuildSettings{}, storage.ErrNotFound
}

type fakeLinks struct {
	mu    sync.Mutex
	links map[string]string
	calls int
}

func (f *fakeLinks) Lookup(_ context.Context, username string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if id, ok := f.links[username]; ok {
		return id, nil
	}
	return "", storage.ErrNotFound
}

type fakeShifts struct{ onDuty, onBreak int }

func (f fakeShifts) CountOnDuty(context.Context, string) (int, error)  { return f.onDuty, nil }
func (f fakeShifts) CountOnBreak(context.Context, string) (int, error) { return f.onBreak, nil }

// fakeLoaRepo mirrors the conditional updates of the Postgres repo.
type fakeLoaRepo struct {
	mu   sync.Mutex
	recs map[int64]*domain.LoaRecord
}

func newFakeLoaRepo(recs ...domain.LoaRecord) *fakeLoaRepo {
	f := &fakeLoaRepo{recs: map[int64]*domain.LoaRecord{}}
	for i := range recs {
		r := recs[i]
		f.recs[r.ID] = &r
	}
	return f
}

func (f *fakeLoaRepo) ListPending(context.Context, domain.GuildFilter) ([]domain.LoaRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.LoaRecord
	for id := int64(1); id <= int64(len(f.recs)); id++ {
		if r, ok := f.recs[id]; ok && r.Accepted && !r.Denied && !r.Expired && !r.UserRolled {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeLoaRepo) MarkStarted(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.recs[id]
	if r == nil || r.Started {
		return false, nil
	}
	r.Started = true
	return true, nil
}

func (f *fakeLoaRepo) MarkExpired(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.recs[id]
	if r == nil || r.Expired {
		return false, nil
	}
	r.Expired = true
	return true, nil
}

func (f *fakeLoaRepo) CountOtherActive(_ context.Context, rec domain.LoaRecord) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.recs {
		if r.ID != rec.ID && r.GuildID == rec.GuildID && r.UserID == rec.UserID && r.Type == rec.Type && r.Active() {
			n++
		}
	}
	return n, nil
}
