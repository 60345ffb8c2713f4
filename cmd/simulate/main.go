package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"marketsync/auth"
	"marketsync/catalog"
	"marketsync/domain"
	"marketsync/moderation"
	"marketsync/realtime"
	"marketsync/runtime"
	"marketsync/services"
	"marketsync/session"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
)

const catalogCSV = `titulo,categoria,descricao,preco
Licenciamento ambiental,1,"LP, LI e LO","R$ 4.500,00"
Plano de gerenciamento de resíduos,3,PGRS completo,"R$ 2.000,00"
Inventário de fauna,42,Campanha de 10 dias,"R$ 9.800,50"
,2,sem título,100
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "simulation failed: %v\n", err)
		os.Exit(1)
	}
}

// user is one signed-in participant with its own realtime connection.
type user struct {
	viewer       domain.Viewer
	token        string
	registry     *realtime.Registry
	readState    *services.ReadStateService
	plans        *services.PlanService
	conversation *services.ConversationService
}

type simulation struct {
	config  Config
	log     *slog.Logger
	backend *runtime.LocalBackend
	secret  []byte
	masker  *moderation.Moderator
}

func run() error {
	config, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	maskChar, err := config.MaskRune()
	if err != nil {
		return err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	secret := []byte(uuid.NewString())
	backend, err := runtime.StartLocalBackend(ctx, logger, runtime.LocalOptions{
		Path:        config.BadgerPath,
		Secret:      secret,
		CheckoutURL: "http://localhost:54321",
	})
	if err != nil {
		return err
	}
	defer backend.Close()

	terms, err := moderation.LoadTerms()
	if err != nil {
		return err
	}
	masker, err := moderation.NewModerator(terms, maskChar, logger)
	if err != nil {
		return err
	}
	s := &simulation{config: config, log: logger, backend: backend, secret: secret, masker: masker}
	return s.scenario(ctx)
}

func (s *simulation) signIn(id string, role domain.Role) (*user, error) {
	viewer := domain.Viewer{UserID: id, Role: role}
	token, err := auth.GenerateToken(viewer, s.secret, time.Hour)
	if err != nil {
		return nil, err
	}
	log := s.log.With("user_id", id)
	plans := services.NewPlanService(log, s.backend.Store, s.backend.Functions)
	notifier := services.NewNotificationService(log, s.backend.Store)
	return &user{
		viewer:    viewer,
		token:     token,
		registry:  realtime.NewRegistry(log, s.backend.Realtime()),
		readState: services.NewReadStateService(log, s.backend.Store, viewer),
		plans:     plans,
		conversation: services.NewConversationService(log, viewer, s.backend.Store, notifier, plans, s.masker,
			services.NewLogToaster(log)),
	}, nil
}

func (s *simulation) scenario(ctx context.Context) error {
	ana, err := s.signIn("ana", domain.RoleClient)
	if err != nil {
		return err
	}
	bruno, err := s.signIn("bruno", domain.RoleProfessional)
	if err != nil {
		return err
	}
	defer ana.registry.Cleanup(ctx)
	defer bruno.registry.Cleanup(ctx)

	s.step("Ana opens a conversation with Bruno")
	conversation, err := ana.conversation.CreateConversation(ctx, ana.viewer.UserID, bruno.viewer.UserID, nil)
	if err != nil {
		return err
	}
	s.info("conversation %s", conversation.ID)

	viewAna := session.NewMessagesView(s.log, ana.viewer, s.backend.Store, ana.registry, ana.readState)
	viewAna.Open(ctx, conversation.ID)
	defer viewAna.Close(ctx)

	counter := session.NewUnreadCounter(s.log, bruno.viewer, s.backend.Store, bruno.registry)
	counter.OnChange(func(count int) { s.info("Bruno unread count: %d", count) })
	counter.Start(ctx)
	defer counter.Stop(ctx)

	inbox := session.NewNotificationsView(s.log, bruno.viewer, s.backend.Store, bruno.registry, bruno.readState)
	inbox.OnNotification(func(n domain.Notification) { s.info("Bruno notified: %s %q", n.Title, n.Message) })
	inbox.Open(ctx)
	defer inbox.Close(ctx)

	s.step("Ana sends \"Hello\"")
	if err := ana.conversation.SendMessage(ctx, conversation, "Hello"); err != nil {
		return err
	}
	if err := s.waitUntil("Bruno counts one unread message", func() bool { return counter.Count() == 1 }); err != nil {
		return err
	}
	if err := s.waitUntil("Bruno has one unread notification", func() bool { return inbox.Unread() == 1 }); err != nil {
		return err
	}
	if err := s.waitUntil("Ana sees her message through the echo", func() bool { return len(viewAna.Messages()) == 1 }); err != nil {
		return err
	}

	s.step("Bruno opens the conversation")
	viewBruno := session.NewMessagesView(s.log, bruno.viewer, s.backend.Store, bruno.registry, bruno.readState)
	viewBruno.Open(ctx, conversation.ID)
	defer viewBruno.Close(ctx)
	if err := s.waitUntil("Bruno's unread count is back to zero", func() bool { return counter.Count() == 0 }); err != nil {
		return err
	}
	if err := s.waitUntil("Ana sees the message as read", func() bool {
		messages := viewAna.Messages()
		return len(messages) == 1 && messages[0].State() == domain.MessageRead
	}); err != nil {
		return err
	}
	inbox.MarkAllAsRead(ctx)
	if err := s.waitUntil("Bruno's notifications are read", func() bool { return inbox.Unread() == 0 }); err != nil {
		return err
	}

	s.step("Bruno answers on the free plan")
	if _, err := bruno.plans.Load(ctx, bruno.viewer.UserID); err != nil {
		return err
	}
	if err := bruno.conversation.SendMessage(ctx, conversation, "Olá Ana"); err != nil {
		s.warn("refused: %v", err)
	}

	s.step("Bruno subscribes to the basic plan")
	url, err := bruno.plans.Checkout(ctx, domain.PlanBasic, bruno.token)
	if err != nil {
		return err
	}
	s.info("checkout at %s", url)
	entitlement, err := bruno.plans.Refresh(ctx, bruno.viewer.UserID, bruno.token)
	if err != nil {
		return err
	}
	s.info("plan is now %s", entitlement.Plan.Tier)

	s.step("Bruno shares his phone number")
	if err := bruno.conversation.SendMessage(ctx, conversation, "Me chama no whatsapp 11 98765-4321"); err != nil {
		return err
	}
	if err := s.waitUntil("Ana receives Bruno's answer", func() bool { return len(viewAna.Messages()) == 2 }); err != nil {
		return err
	}
	s.info("Ana reads: %q", viewAna.Messages()[1].Content)

	s.step("Bruno imports his catalog")
	importer := catalog.NewImporter(s.log, bruno.viewer, s.backend.Store, bruno.plans, services.NewLogToaster(s.log))
	report, err := importer.Import(ctx, strings.NewReader(catalogCSV))
	if err != nil {
		return err
	}
	s.info("imported %d, over limit %d, invalid %d", report.Imported, report.OverLimit, len(report.Invalid))
	for _, invalid := range report.Invalid {
		s.warn("%v", invalid)
	}

	s.step("Done")
	return nil
}

// waitUntil polls cond until it holds or the configured timeout expires.
func (s *simulation) waitUntil(what string, cond func() bool) error {
	deadline := time.Now().Add(s.config.WaitTimeout)
	for !cond() {
		if time.Now().After(deadline) {
			s.warn("timed out: %s", what)
			return fmt.Errorf("timed out waiting: %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
	s.ok("%s", what)
	return nil
}

func (s *simulation) step(title string) {
	s.print(color.New(color.BgBlack, color.FgGreen), "  ====== "+title+" ======")
}

func (s *simulation) ok(format string, args ...any) {
	s.print(color.New(color.FgGreen), "  ✓ "+fmt.Sprintf(format, args...))
}

func (s *simulation) info(format string, args ...any) {
	s.print(color.New(color.FgCyan), "    "+fmt.Sprintf(format, args...))
}

func (s *simulation) warn(format string, args ...any) {
	s.print(color.New(color.FgYellow), "  ! "+fmt.Sprintf(format, args...))
}

func (s *simulation) print(style color.Style, line string) {
	if s.config.Colours {
		line = style.Render(line)
	}
	fmt.Println(line)
}
