package models

import (
	"time"

	"github.com/google/uuid"

	"game_backend/internal/lib/version"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	PassHash  []byte    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
}

// RefreshToken is a session record: one row per issued long-lived token.
// A user may hold several rows at once (multi-device login).
type RefreshToken struct {
	Token     string
	UserID    uuid.UUID
	CreatedAt time.Time
}

// VerificationCode is stored hashed; the plaintext only ever travels
// out-of-band to the mailbox it was issued for.
type VerificationCode struct {
	Email     string
	CodeHash  string
	CreatedAt time.Time
}

// PlayerData is the per-user save blob the game client syncs.
type PlayerData struct {
	Username              string   `json:"username"`
	Playtime              float64  `json:"playtime"`
	TotalBalanceCollected float64  `json:"totalBalanceCollected"`
	CurrencySpent         float64  `json:"currencySpent"`
	Purchases             int      `json:"purchases"`
	Balance               float64  `json:"balance"`
	GamesPlayed           int      `json:"gamesPlayed"`
	Jumps                 int      `json:"jumps"`
	Scores                int      `json:"scores"`
	ColoursOwned          [][3]int `json:"coloursOwned"`
	DesignsOwned          []string `json:"designsOwned"`
	CustomSkinsOwned      []string `json:"customSkinsOwned"`
	PrimaryColour         [3]int   `json:"primaryColour"`
	SecondaryColour       *[3]int  `json:"secondaryColour"`
	EquippedDesign        string   `json:"equippedDesign"`
	EquippedCustomSkin    string   `json:"equippedCustomSkin"`
	Jump                  int      `json:"jump"`
	JumpKey               string   `json:"jumpKey"`
	GameSpeedMultiplier   float64  `json:"gameSpeedMultiplier"`
	StripeWidth           int      `json:"stripeWidth"`
	OutlineSize           int      `json:"outlineSize"`
	RadiusLength          int      `json:"radiusLength"`
	ColourChangeInterval  float64  `json:"colourChangeInterval"`
	ShowHitboxes          bool     `json:"showHitboxes"`
	Autosave              bool     `json:"autosave"`
	Spins                 int      `json:"spins"`
	SpinsSpun             int      `json:"spinsSpun"`
	LevelsCompleted       int      `json:"levelsCompleted"`
	ShowLevelProgress     bool     `json:"showLevelProgress"`
	ProgressPrecision     int      `json:"progressPrecision"`
	LevelAttempts         [][2]int `json:"levelAttempts"`
}

// DefaultPlayerData is the save blob a fresh account starts with.
func DefaultPlayerData(username string) PlayerData {
	return PlayerData{
		Username:             username,
		ColoursOwned:         [][3]int{{0, 190, 0}},
		DesignsOwned:         []string{},
		CustomSkinsOwned:     []string{},
		PrimaryColour:        [3]int{0, 190, 0},
		Jump:                 32,
		JumpKey:              "SPACE",
		GameSpeedMultiplier:  1,
		StripeWidth:          4,
		OutlineSize:          4,
		RadiusLength:         10,
		ColourChangeInterval: 3,
		Autosave:             true,
		ShowLevelProgress:    true,
		LevelAttempts:        [][2]int{},
	}
}

type Review struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"userId"`
	Username   string    `json:"username,omitempty"`
	Content    string    `json:"content"`
	Rating     int       `json:"rating"`
	Relates    int       `json:"relates"`
	OwnerReply string    `json:"ownerReply"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type PatchLog struct {
	ID             uuid.UUID       `json:"id"`
	LastVersion    string          `json:"lastVersion,omitempty"`
	CurrentVersion version.Version `json:"currentVersion"`
	Log            string          `json:"log"`
	CreatedAt      time.Time       `json:"createdAt"`
}

type ReleaseNote struct {
	ID        uuid.UUID       `json:"id"`
	Version   version.Version `json:"version"`
	Text      string          `json:"text"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Message is the payload published to the mail queue.
type Message struct {
	Email   string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
