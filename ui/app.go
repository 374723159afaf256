package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/yllada/vpn-switcher/common"
	"github.com/yllada/vpn-switcher/netman"
	"github.com/yllada/vpn-switcher/policy"
)

// refreshInterval is how often the view re-queries the control plane.
const refreshInterval = 2 * time.Second

type tickMsg time.Time

// refreshMsg carries one consistent snapshot of network and policy state.
type refreshMsg struct {
	links    []netman.Attachment
	tunnels  []netman.Attachment
	eval     policy.Evaluation
	rules    []policy.TrustRule
	fallback string
	names    map[string]string
	err      error
	at       time.Time
}

// Model is the interactive status view. It polls the control plane on a
// fixed interval and renders the same evaluation the daemon performs, so
// what the user sees is what the daemon would enforce.
type Model struct {
	client *netman.Client
	store  *policy.Store

	table       table.Model
	links       []netman.Attachment
	tunnels     []netman.Attachment
	eval        policy.Evaluation
	rules       []policy.TrustRule
	fallback    string
	names       map[string]string
	err         error
	refreshedAt time.Time
}

// NewModel builds the status view over a connected control plane client and
// a policy store.
func NewModel(client *netman.Client, store *policy.Store) Model {
	columns := []table.Column{
		{Title: "#", Width: 3},
		{Title: "MATCH", Width: 30},
		{Title: "TUNNEL", Width: 24},
		{Title: "", Width: 2},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(6),
	)
	t.SetStyles(tableStyles())

	return Model{
		client: client,
		store:  store,
		table:  t,
		names:  map[string]string{},
	}
}

// Run starts the interactive status view and blocks until the user quits.
func Run(client *netman.Client, store *policy.Store) error {
	program := tea.NewProgram(NewModel(client, store), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// Init starts the first refresh and the refresh ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refreshCmd queries the control plane and the policy store off the UI
// loop. Name resolution failures are tolerated; the view falls back to
// UUIDs.
func (m Model) refreshCmd() tea.Cmd {
	client := m.client
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), common.QueryTimeout)
		defer cancel()

		msg := refreshMsg{at: time.Now(), names: map[string]string{}}

		links, err := netman.LinkAttachments(ctx, client)
		if err != nil {
			msg.err = err
			return msg
		}
		tunnels, err := netman.TunnelAttachments(ctx, client)
		if err != nil {
			msg.err = err
			return msg
		}
		cfg, err := store.Load()
		if err != nil {
			msg.err = err
			return msg
		}

		msg.links = links
		msg.tunnels = tunnels
		msg.rules = cfg.Rules
		msg.fallback = cfg.FallbackVPNUUID
		msg.eval = policy.Evaluate(links, tunnels, cfg)

		if saved, err := client.SavedTunnels(ctx); err == nil {
			for _, tunnel := range saved {
				msg.names[tunnel.UUID] = tunnel.Name
			}
		}
		return msg
	}
}

// Update handles key presses, the refresh ticker and snapshot arrivals.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.refreshCmd()
		}
	case tickMsg:
		return m, tea.Batch(m.refreshCmd(), tickCmd())
	case refreshMsg:
		m.err = msg.err
		if msg.err == nil {
			m.links = msg.links
			m.tunnels = msg.tunnels
			m.eval = msg.eval
			m.rules = msg.rules
			m.fallback = msg.fallback
			m.names = msg.names
			m.refreshedAt = msg.at
			m.table.SetRows(m.ruleRows())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the verdict, the active attachments, and the rule table.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(common.AppName))
	if !m.refreshedAt.IsZero() {
		b.WriteString(dimStyle.Render("  refreshed " + m.refreshedAt.Format("15:04:05")))
	}
	b.WriteString("\n\n")

	b.WriteString(m.verdictLine())
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Attachments"))
	b.WriteString("\n")
	if len(m.links)+len(m.tunnels) == 0 {
		b.WriteString(dimStyle.Render("  no active connections"))
		b.WriteString("\n")
	}
	for _, att := range m.links {
		b.WriteString("  " + attachmentLine(att) + "\n")
	}
	for _, att := range m.tunnels {
		b.WriteString("  " + tunnelStyle.Render(attachmentLine(att)) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(sectionStyle.Render("Trust rules"))
	b.WriteString("\n")
	if len(m.rules) == 0 {
		b.WriteString(dimStyle.Render("  no rules configured"))
		b.WriteString("\n")
	} else {
		b.WriteString(m.table.View())
		b.WriteString("\n")
	}

	b.WriteString(m.fallbackLine())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("q quit · r refresh · ↑/↓ select"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) verdictLine() string {
	if m.err != nil {
		return errorStyle.Render("✗ " + m.err.Error())
	}

	required := "no tunnel required"
	if m.eval.DesiredTunnel != "" {
		required = "required tunnel: " + m.tunnelLabel(m.eval.DesiredTunnel)
	}
	if m.eval.Compliant {
		return okStyle.Render("✓ Compliant") + dimStyle.Render("  ("+required+")")
	}
	return errorStyle.Render("✗ Not compliant") + dimStyle.Render("  ("+required+")")
}

func (m Model) fallbackLine() string {
	if m.fallback == "" {
		return dimStyle.Render("Fallback: none")
	}
	line := "Fallback: " + m.tunnelLabel(m.fallback)
	if m.eval.FallbackApplied {
		return warnStyle.Render(line + " (in effect)")
	}
	return line
}

func (m Model) ruleRows() []table.Row {
	rows := make([]table.Row, 0, len(m.rules))
	for i := range m.rules {
		marker := ""
		if m.eval.MatchedRule == &m.rules[i] {
			marker = "●"
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			m.rules[i].Describe(),
			m.tunnelLabel(m.rules[i].VPNUUID),
			marker,
		})
	}
	return rows
}

// tunnelLabel prefers the saved connection name over the raw UUID.
func (m Model) tunnelLabel(tunnelUUID string) string {
	if name, ok := m.names[tunnelUUID]; ok && name != "" {
		return name
	}
	return common.TruncateID(tunnelUUID, 8)
}

func attachmentLine(att netman.Attachment) string {
	line := fmt.Sprintf("%-9s %-24s %-10s", att.Kind, att.Name, att.Interface)
	if att.SSID != "" {
		line += " ssid " + att.SSID
	}
	return line
}
