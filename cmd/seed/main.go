// Package main seeds a Canvass database with demo users, projects,
// memberships and notes. Running it twice is safe: users are matched by
// email and projects by name within their owner's list.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/keyxmakerx/canvass/internal/apperror"
	"github.com/keyxmakerx/canvass/internal/config"
	"github.com/keyxmakerx/canvass/internal/database"
	"github.com/keyxmakerx/canvass/internal/metrics"
	"github.com/keyxmakerx/canvass/internal/plugins/auth"
	"github.com/keyxmakerx/canvass/internal/plugins/projects"
	"github.com/keyxmakerx/canvass/internal/widgets/notes"
)

// demoPassword is shared by every seeded account.
const demoPassword = "Password123!"

type seedUser struct {
	key, email, name string
}

type seedNote struct {
	author, contact, email, body string
}

type seedProject struct {
	owner       string
	name        string
	description string
	members     []string
	notes       []seedNote
}

var users = []seedUser{
	{"frodo", "frodo.baggins@theshire.me", "Frodo Baggins"},
	{"sam", "samwise.gamgee@theshire.me", "Samwise Gamgee"},
	{"merry", "merry.brandybuck@theshire.me", "Meriadoc Brandybuck"},
	{"pippin", "pippin.took@theshire.me", "Peregrin Took"},
}

var projectSeeds = []seedProject{
	{
		owner:       "frodo",
		name:        "Support Gondor's Post-War Renovation Initiative",
		description: "Gathering citizen signatures to rebuild Minas Tirith, starting with the lower circles.",
		members:     []string{"sam"},
		notes: []seedNote{
			{"frodo", "Aragorn son of Arathorn", "king.elessar@gondor.gov", "Strong supporter. Offered to match citizen donations and wants a follow-up next week."},
			{"sam", "Faramir of Gondor", "faramir.steward@gondor.gov", "Agrees on restoration but worried about the timeline. Asked for a budget breakdown."},
			{"sam", "Beregond of the Citadel Guard", "", "Will sign if the plan covers security during scaffolding work. Prefers a phased approach."},
		},
	},
	{
		owner:       "sam",
		name:        "Petition Elves to Deal with Rivendell Orc Infestation",
		description: "Collecting signatures so Lord Elrond takes the orc problem near the Last Homely House seriously.",
		members:     []string{"frodo", "merry"},
		notes: []seedNote{
			{"sam", "Glorfindel", "glorfindel@rivendell.elf", "Already patrols the fords. Happy to sign and to speak at the council meeting."},
			{"merry", "Lindir", "", "Undecided. Thinks the reports are exaggerated but agreed to read the petition."},
		},
	},
	{
		owner:       "merry",
		name:        "Save the Shire's Old Forest Campaign",
		description: "Community organizing against industrial expansion into the Old Forest.",
		members:     []string{"pippin"},
		notes: []seedNote{
			{"merry", "Tom Bombadil", "", "Enthusiastic. Sang for a while, then signed twice. Only counted once."},
			{"pippin", "Farmer Maggot", "maggot@marish.shire", "Supports it if the campaign also keeps trespassers off his mushroom fields."},
		},
	},
	{
		owner:       "pippin",
		name:        "Longbottom Leaf Fair Trade Certification Drive",
		description: "Fair compensation and working conditions for every pipe-weed grower in the Southfarthing.",
		members:     []string{"frodo", "sam", "merry"},
		notes: []seedNote{
			{"pippin", "Tobold Hornblower", "tobold@longbottom.shire", "Founder's family is on board. Wants certification criteria published before signing."},
			{"frodo", "Barliman Butterbur", "barliman@prancingpony.bree", "Would stock certified leaf at the Pony if the price stays reasonable."},
		},
	},
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.NewMariaDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to connect to MariaDB", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(db, cfg.MigrationsPath); err != nil {
		slog.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	userRepo := auth.NewUserRepository(db)
	s := &seeder{
		users:    userRepo,
		auth:     auth.NewAuthService(userRepo, auth.NewPasswordHasher(cfg.Auth.BcryptCost), metrics.Nop{}),
		projects: projects.NewProjectService(projects.NewProjectRepository(db), projects.NewUserFinderAdapter(userRepo)),
		notes:    notes.NewNoteService(notes.NewNoteRepository(db)),
		ids:      map[string]string{},
	}
	if err := s.run(ctx); err != nil {
		slog.Error("seeding failed", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("seeding complete", slog.String("password", demoPassword))
}

type seeder struct {
	users    auth.UserRepository
	auth     auth.AuthService
	projects projects.ProjectService
	notes    notes.NoteService
	ids      map[string]string
}

func (s *seeder) run(ctx context.Context) error {
	for _, u := range users {
		id, err := s.ensureUser(ctx, u)
		if err != nil {
			return err
		}
		s.ids[u.key] = id
	}
	for _, p := range projectSeeds {
		if err := s.ensureProject(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (s *seeder) ensureUser(ctx context.Context, u seedUser) (string, error) {
	existing, err := s.users.FindByEmail(ctx, u.email)
	if err == nil {
		slog.Info("user exists, skipping", slog.String("email", u.email))
		return existing.ID, nil
	}
	if !apperror.Is(err, apperror.TypeNotFound) {
		return "", err
	}

	created, err := s.auth.Register(ctx, auth.RegisterInput{Email: u.email, Name: u.name, Password: demoPassword})
	if err != nil {
		return "", err
	}
	slog.Info("seeded user", slog.String("email", u.email))
	return created.ID, nil
}

func (s *seeder) ensureProject(ctx context.Context, p seedProject) error {
	ownerID := s.ids[p.owner]
	owned, err := s.projects.ListForUser(ctx, ownerID, p.name)
	if err != nil {
		return err
	}
	for _, existing := range owned {
		if existing.Name == p.name && existing.OwnerID == ownerID {
			slog.Info("project exists, skipping", slog.String("name", p.name))
			return nil
		}
	}

	memberIDs := make([]string, 0, len(p.members))
	for _, key := range p.members {
		memberIDs = append(memberIDs, s.ids[key])
	}
	project, err := s.projects.Create(ctx, ownerID, projects.CreateProjectInput{
		Name:        p.name,
		Description: p.description,
		MemberIDs:   memberIDs,
	})
	if err != nil {
		return err
	}

	for _, n := range p.notes {
		if _, err := s.notes.Create(ctx, project.ID, s.ids[n.author], notes.NoteInput{
			ContactName:  n.contact,
			ContactEmail: n.email,
			Notes:        n.body,
		}); err != nil {
			return err
		}
	}
	slog.Info("seeded project",
		slog.String("name", p.name),
		slog.Int("notes", len(p.notes)),
	)
	return nil
}
