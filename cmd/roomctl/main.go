// roomctl is a terminal view onto a running room server. It reads the
// dashboard API and renders the room state as tables.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"

	"github.com/kokexgggguu/haxball/contract"
	"github.com/kokexgggguu/haxball/domain"
)

type dashboardPayload struct {
	Stats         domain.RoomStats        `json:"stats"`
	Players       []domain.Player         `json:"players"`
	Commands      []domain.CommandRecord  `json:"commands"`
	Settings      domain.RoomSettings     `json:"settings"`
	Roster        []domain.RoomPlayer     `json:"roster"`
	DiscordStatus contract.NotifierStatus `json:"discordStatus"`
}

func main() {
	addr := flag.String("addr", "http://localhost:3000", "Room server base URL")
	showArchive := flag.Bool("archive", false, "Also list archived games")
	flag.Parse()

	client := &http.Client{Timeout: 5 * time.Second}

	var dashboard dashboardPayload
	if err := fetch(client, *addr+"/api/dashboard", &dashboard); err != nil {
		log.Fatal("Error while reading dashboard: ", err)
	}

	printHeader(dashboard)
	printStats(dashboard.Stats)
	printRoster(dashboard.Roster, dashboard.Players)
	printCommands(dashboard.Commands)

	if *showArchive {
		var games []domain.Game
		if err := fetch(client, *addr+"/api/games/archive?limit=20", &games); err != nil {
			log.Fatal("Error while reading archive: ", err)
		}
		printArchive(games)
	}
}

func fetch(client *http.Client, url string, out any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s from %s", resp.Status, url)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func printHeader(d dashboardPayload) {
	title := fmt.Sprintf(" %s ", d.Settings.RoomName)
	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(title))

	discord := color.FgRed.Render("disconnected")
	if d.DiscordStatus.Connected {
		discord = color.FgGreen.Render("connected")
	}
	visibility := "private"
	if d.Settings.IsPublic {
		visibility = "public"
	}
	fmt.Printf("Discord: %s | Room: %s | Max players: %d\n\n", discord, visibility, d.Settings.MaxPlayers)
}

func newTable(headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func printStats(stats domain.RoomStats) {
	table := newTable([]string{"Online", "Players Today", "Commands", "Discord Msgs", "Games"})
	table.Append([]string{
		fmt.Sprintf("%d", stats.CurrentPlayers),
		fmt.Sprintf("%d", stats.TotalPlayersToday),
		fmt.Sprintf("%d", stats.CommandsUsedToday),
		fmt.Sprintf("%d", stats.DiscordMessagesToday),
		fmt.Sprintf("%d", stats.GamesToday),
	})
	table.Render()
	fmt.Println()
}

func printRoster(roster []domain.RoomPlayer, players []domain.Player) {
	goals := make(map[string]int, len(players))
	for _, p := range players {
		goals[p.Name] = p.TotalGoals
	}

	table := newTable([]string{"ID", "Name", "Team", "Admin", "Goals"})
	for _, p := range roster {
		admin := ""
		if p.Admin {
			admin = color.FgYellow.Render("yes")
		}
		table.Append([]string{
			fmt.Sprintf("%d", p.ID),
			p.Name,
			p.Team.String(),
			admin,
			fmt.Sprintf("%d", goals[p.Name]),
		})
	}
	table.Render()
	fmt.Println()
}

func printCommands(commands []domain.CommandRecord) {
	table := newTable([]string{"Time", "Player", "Command", "Params", "OK"})
	for _, c := range commands {
		ok := color.FgGreen.Render("yes")
		if !c.Success {
			ok = color.FgRed.Render("no")
		}
		table.Append([]string{
			c.Timestamp.Format("15:04:05"),
			c.PlayerName,
			"!" + c.CommandName,
			c.Parameters,
			ok,
		})
	}
	table.Render()
}

func printArchive(games []domain.Game) {
	fmt.Println()
	table := newTable([]string{"Ended", "Winner", "Score", "Duration", "Game ID"})
	for _, g := range games {
		ended := "?"
		if g.EndedAt != nil {
			ended = g.EndedAt.Format("02 Jan 15:04")
		}
		displayID := g.ID
		if len(displayID) > 8 {
			displayID = displayID[:8]
		}
		table.Append([]string{
			ended,
			g.WinnerTeam,
			fmt.Sprintf("%d - %d", g.RedScore, g.BlueScore),
			fmt.Sprintf("%d:%02d", g.Duration/60, g.Duration%60),
			displayID,
		})
	}
	table.Render()
}
