package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/domain"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/ports"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/core/validation"
	"github.com/aBrickThatCodes/car-repair-shop-backend/internal/infrastructure/health"
)

var errQuit = errors.New("quit")

type command struct {
	usage string
	run   func(ctx context.Context, args []string) error
}

// shell reads one command per line and prints results or errors. An engine
// error never ends the loop.
type shell struct {
	engine   ports.ShopService
	out      io.Writer
	checker  *health.Checker
	gatherer prometheus.Gatherer
	currency string
	hashCost int

	commands map[string]command
}

func newShell(engine ports.ShopService, out io.Writer) *shell {
	s := &shell{
		engine:   engine,
		out:      out,
		currency: domain.DefaultCurrency,
		hashCost: bcrypt.DefaultCost,
	}
	s.commands = map[string]command{
		"register": {"register <email> <password|hash> <name...>", s.register},
		"login":    {"login client <email> <hash> | login employee <id> <hash>", s.login},
		"logout":   {"logout", s.logout},
		"whoami":   {"whoami", s.whoami},
		"vehicle":  {"vehicle register <client-id> <make> <model...> | vehicle show <client-id>", s.vehicle},
		"order":    {"order create <client-id> <inspection|repair> | order list [open|finished|mine] | order check|repair|close <id>", s.order},
		"report":   {"report create <order-id> <amount> | report show|summary <id> | report list", s.report},
		"hash":     {"hash <password>", s.hash},
		"ping":     {"ping", s.ping},
		"stats":    {"stats", s.stats},
		"help":     {"help", s.help},
		"quit":     {"quit", func(context.Context, []string) error { return errQuit }},
	}
	s.commands["exit"] = s.commands["quit"]
	return s
}

func (s *shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *shell) run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	s.printf("Car repair shop. Type 'help' for commands.\n")
	for {
		s.printf("[%v]> ", s.engine.CurrentSession())
		if !scanner.Scan() {
			s.printf("\n")
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := s.exec(ctx, line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			s.printf("error: %v\n", err)
		}
	}
}

func (s *shell) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	cmd, ok := s.commands[strings.ToLower(fields[0])]
	if !ok {
		return fmt.Errorf("unknown command %q, try 'help'", fields[0])
	}
	return cmd.run(ctx, fields[1:])
}

func usage(u string) error { return fmt.Errorf("usage: %s", u) }

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%q is not a valid id", s)
	}
	return id, nil
}

// register hashes a plain password before handing it to the engine and prints
// the resulting credential, which is what later logins must present.
func (s *shell) register(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return usage(s.commands["register"].usage)
	}
	email, credential, name := args[0], args[1], strings.Join(args[2:], " ")
	if !validation.IsHashedCredential(credential) {
		hash, err := bcrypt.GenerateFromPassword([]byte(credential), s.hashCost)
		if err != nil {
			return err
		}
		credential = string(hash)
	}
	sess, err := s.engine.RegisterClient(ctx, name, email, credential)
	if err != nil {
		return err
	}
	s.printf("registered %v\ncredential: %s\n", sess, credential)
	return nil
}

func (s *shell) login(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return usage(s.commands["login"].usage)
	}
	var (
		sess domain.Session
		err  error
	)
	switch strings.ToLower(args[0]) {
	case "client":
		sess, err = s.engine.ClientLogin(ctx, args[1], args[2])
	case "employee":
		id, perr := parseID(args[1])
		if perr != nil {
			return perr
		}
		sess, err = s.engine.EmployeeLogin(ctx, id, args[2])
	default:
		return usage(s.commands["login"].usage)
	}
	if err != nil {
		return err
	}
	s.printf("logged in as %v\n", sess)
	return nil
}

func (s *shell) logout(ctx context.Context, _ []string) error {
	if _, err := s.engine.LogOut(ctx); err != nil {
		return err
	}
	s.printf("logged out\n")
	return nil
}

func (s *shell) whoami(context.Context, []string) error {
	s.printf("%v\n", s.engine.CurrentSession())
	return nil
}

func (s *shell) vehicle(ctx context.Context, args []string) error {
	u := s.commands["vehicle"].usage
	if len(args) < 2 {
		return usage(u)
	}
	clientID, err := parseID(args[1])
	if err != nil {
		return err
	}
	switch strings.ToLower(args[0]) {
	case "register":
		if len(args) < 4 {
			return usage(u)
		}
		if err := s.engine.RegisterVehicle(ctx, clientID, args[2], strings.Join(args[3:], " ")); err != nil {
			return err
		}
		s.printf("vehicle registered\n")
	case "show":
		v, err := s.engine.GetVehicle(ctx, clientID)
		if err != nil {
			return err
		}
		if v == nil {
			s.printf("client %d has no vehicle registered\n", clientID)
			return nil
		}
		s.printf("%v\n", v)
	default:
		return usage(u)
	}
	return nil
}

func (s *shell) order(ctx context.Context, args []string) error {
	u := s.commands["order"].usage
	if len(args) == 0 {
		return usage(u)
	}
	switch sub := strings.ToLower(args[0]); sub {
	case "create":
		if len(args) != 3 {
			return usage(u)
		}
		clientID, err := parseID(args[1])
		if err != nil {
			return err
		}
		svc, err := domain.ParseService(args[2])
		if err != nil {
			return err
		}
		o, err := s.engine.CreateOrder(ctx, clientID, svc)
		if err != nil {
			return err
		}
		s.printf("created order %v\n", o)
	case "list":
		which := ""
		if len(args) > 1 {
			which = strings.ToLower(args[1])
		}
		orders, err := s.listOrders(ctx, which)
		if err != nil {
			return err
		}
		s.printOrders(orders)
	case "check", "repair", "close":
		if len(args) != 2 {
			return usage(u)
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		switch sub {
		case "check":
			err = s.engine.CheckOrder(ctx, id)
		case "repair":
			err = s.engine.AdvanceInspectionToRepair(ctx, id)
		case "close":
			err = s.engine.CloseOrder(ctx, id)
		}
		if err != nil {
			return err
		}
		s.printf("order %d: ok\n", id)
	default:
		return usage(u)
	}
	return nil
}

// listOrders picks the listing for the session's role unless one is named.
func (s *shell) listOrders(ctx context.Context, which string) ([]domain.Order, error) {
	if which == "" {
		switch s.engine.CurrentSession().(type) {
		case domain.MechanicSession:
			which = "open"
		case domain.TechnicianSession:
			which = "finished"
		default:
			which = "mine"
		}
	}
	switch which {
	case "open":
		return s.engine.ListUnfinishedOrders(ctx)
	case "finished":
		return s.engine.ListFinishedOrders(ctx)
	case "mine":
		return s.engine.ListClientOrders(ctx)
	}
	return nil, usage(s.commands["order"].usage)
}

func (s *shell) printOrders(orders []domain.Order) {
	if len(orders) == 0 {
		s.printf("no orders\n")
		return
	}
	for _, o := range orders {
		s.printf("%v\n", o)
	}
}

func (s *shell) formatReport(r domain.Report) string {
	return fmt.Sprintf("%d | Order: %d | Client: %d | Cost: %s", r.ID, r.OrderID, r.ClientID, domain.FormatCost(r.Cost, s.currency))
}

func (s *shell) report(ctx context.Context, args []string) error {
	u := s.commands["report"].usage
	if len(args) == 0 {
		return usage(u)
	}
	switch sub := strings.ToLower(args[0]); sub {
	case "create":
		if len(args) != 3 {
			return usage(u)
		}
		orderID, err := parseID(args[1])
		if err != nil {
			return err
		}
		if err := s.engine.CheckOrder(ctx, orderID); err != nil {
			return err
		}
		cost, err := domain.ParseCost(args[2])
		if err != nil {
			return err
		}
		r, err := s.engine.CreateReport(ctx, orderID, cost)
		if err != nil {
			return err
		}
		s.printf("created report %s\n", s.formatReport(*r))
	case "show", "summary":
		if len(args) != 2 {
			return usage(u)
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		if sub == "show" {
			r, err := s.engine.GetReport(ctx, id)
			if err != nil {
				return err
			}
			s.printf("%s\n", s.formatReport(*r))
			return nil
		}
		sum, err := s.engine.GetReportSummary(ctx, id)
		if err != nil {
			return err
		}
		s.printf("%s\n  %v\n", s.formatReport(sum.Report), sum.Order)
	case "list":
		reports, err := s.engine.ListClientReports(ctx)
		if err != nil {
			return err
		}
		if len(reports) == 0 {
			s.printf("no reports\n")
		}
		for _, r := range reports {
			s.printf("%s\n", s.formatReport(r))
		}
	default:
		return usage(u)
	}
	return nil
}

func (s *shell) hash(_ context.Context, args []string) error {
	if len(args) != 1 {
		return usage(s.commands["hash"].usage)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(args[0]), s.hashCost)
	if err != nil {
		return err
	}
	s.printf("%s\n", h)
	return nil
}

func (s *shell) ping(ctx context.Context, _ []string) error {
	if s.checker == nil {
		return errors.New("no readiness checks configured")
	}
	r := s.checker.Check(ctx)
	s.printf("status: %s\n", r.Status)
	for _, name := range r.Names() {
		d := r.Dependencies[name]
		if d.Error != "" {
			s.printf("  %s: %s (%s)\n", name, d.Status, d.Error)
			continue
		}
		s.printf("  %s: %s\n", name, d.Status)
	}
	return nil
}

// stats prints the engine operation counters.
func (s *shell) stats(context.Context, []string) error {
	if s.gatherer == nil {
		return errors.New("metrics are not enabled")
	}
	families, err := s.gatherer.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if mf.GetName() != "shop_operations_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			s.printf("%s %g\n", strings.Join(labels, " "), m.GetCounter().GetValue())
		}
	}
	return nil
}

func (s *shell) help(context.Context, []string) error {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		if name != "exit" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		s.printf("  %s\n", s.commands[name].usage)
	}
	return nil
}
