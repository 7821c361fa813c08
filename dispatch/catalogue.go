package dispatch

// commandSpec statically describes one chat command: who may run it, how
// many positional arguments it needs and the usage string echoed back on a
// malformed call.
type commandSpec struct {
	adminOnly bool
	minArgs   int
	usage     string
	desc      string
}

// catalogueOrder fixes the listing order for !help; maps do not iterate
// deterministically.
var catalogueOrder = []string{
	"admin", "kick", "ban", "bb", "clearbans", "mute", "unmute", "swap",
	"move", "start", "stop", "pause", "rr", "reset", "setadmin", "unadmin",
	"clear", "help", "commands", "stats", "games", "wins", "goals",
	"assists", "mvp", "top", "rank", "discord", "rules", "teams", "score",
	"time", "ping", "online", "uptime", "version", "afk", "website",
	"donate",
}

var catalogue = map[string]commandSpec{
	"admin":     {minArgs: 1, usage: "!admin [password]", desc: "Get admin privileges"},
	"kick":      {adminOnly: true, minArgs: 1, usage: "!kick [player]", desc: "Kick a player"},
	"ban":       {adminOnly: true, minArgs: 1, usage: "!ban [player]", desc: "Ban a player"},
	"bb":        {adminOnly: true, minArgs: 1, usage: "!bb [player]", desc: "Ban a player (short form)"},
	"clearbans": {adminOnly: true, usage: "!clearbans", desc: "Clear all bans"},
	"mute":      {adminOnly: true, minArgs: 1, usage: "!mute [player]", desc: "Mute a player"},
	"unmute":    {adminOnly: true, minArgs: 1, usage: "!unmute [player]", desc: "Unmute a player"},
	"swap":      {adminOnly: true, minArgs: 1, usage: "!swap [player]", desc: "Swap player to the other team"},
	"move":      {adminOnly: true, minArgs: 2, usage: "!move [player] [red/blue/spec]", desc: "Move player to a team"},
	"start":     {adminOnly: true, usage: "!start", desc: "Start the game"},
	"stop":      {adminOnly: true, usage: "!stop", desc: "Stop the game"},
	"pause":     {adminOnly: true, usage: "!pause", desc: "Pause the game"},
	"rr":        {adminOnly: true, usage: "!rr", desc: "Restart the game"},
	"reset":     {adminOnly: true, usage: "!reset", desc: "Restart the game"},
	"setadmin":  {adminOnly: true, minArgs: 1, usage: "!setadmin [player]", desc: "Give admin to a player"},
	"unadmin":   {adminOnly: true, minArgs: 1, usage: "!unadmin [player]", desc: "Remove admin from a player"},
	"clear":     {adminOnly: true, usage: "!clear", desc: "Clear the chat"},
	"help":      {usage: "!help [command]", desc: "Show available commands"},
	"commands":  {usage: "!commands", desc: "List all commands"},
	"stats":     {usage: "!stats [player]", desc: "Show player statistics"},
	"games":     {usage: "!games", desc: "Show total games played"},
	"wins":      {usage: "!wins [player]", desc: "Show wins"},
	"goals":     {usage: "!goals [player]", desc: "Show goals scored"},
	"assists":   {usage: "!assists [player]", desc: "Show assists"},
	"mvp":       {usage: "!mvp [player]", desc: "Show MVP count"},
	"top":       {usage: "!top", desc: "Show top players"},
	"rank":      {usage: "!rank", desc: "Show your rank"},
	"discord":   {usage: "!discord", desc: "Get the Discord invite link"},
	"rules":     {usage: "!rules", desc: "Show room rules"},
	"teams":     {usage: "!teams", desc: "Show team information"},
	"score":     {usage: "!score", desc: "Show the current score"},
	"time":      {usage: "!time", desc: "Show elapsed game time"},
	"ping":      {usage: "!ping", desc: "Check your connection"},
	"online":    {usage: "!online", desc: "Show online players"},
	"uptime":    {usage: "!uptime", desc: "Show room uptime"},
	"version":   {usage: "!version", desc: "Show bot version"},
	"afk":       {usage: "!afk", desc: "Mark yourself as AFK"},
	"website":   {usage: "!website", desc: "Get the website link"},
	"donate":    {usage: "!donate", desc: "Get donation info"},
}
