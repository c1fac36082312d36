package version

// legacyVersions are the published next releases that predate serverless
// build output. Any requirement satisfiable by one of these takes the
// legacy packaging path.
var legacyVersions = []string{
	"4.0.0",
	"4.1.0",
	"4.1.4",
	"4.2.0",
	"4.2.3",
	"5.0.0",
	"5.1.0",
	"6.0.0",
	"6.0.3",
	"6.1.1",
	"6.1.2",
	"7.0.0",
	"7.0.1",
	"7.0.2",
	"7.0.3",
	"8.0.0",
	"8.0.1",
	"8.0.2",
	"8.0.3",
	"8.0.4-canary.0",
	"8.0.4-canary.1",
	"8.0.4-canary.2",
	"8.0.4-canary.3",
	"8.0.4-canary.4",
	"8.0.4-canary.5",
	"8.0.4-canary.6",
	"8.0.4-canary.7",
	"8.0.4-canary.8",
	"8.0.4-canary.9",
	"8.0.4-canary.10",
	"8.0.4-canary.11",
	"8.0.4-canary.12",
	"8.0.4-canary.13",
}
