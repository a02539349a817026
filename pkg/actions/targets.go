package actions

import (
	"fmt"
	"regexp"

	"github.com/entrhq/cxvoice/pkg/browser"
)

// Icon-font glyphs used as accessible names on the webphone.
const (
	keypadGlyph = "\uf11c"
	hangupGlyph = "\uf3dd"
)

// Agent desk targets.
var (
	InteractionPanelButton = browser.ByRole(browser.RoleButton, "").WithText("question_answer")
	AgentAvatar            = browser.XPath(`//img[@alt='Agent']`)
	AgentButton            = browser.ByRole(browser.RoleButton, "Agent")
	StateToggle            = browser.XPath(`//span[@class='ellipsis']`)
	ReadyMenuItem          = browser.CSS(`button.mat-menu-item:has-text('Ready')`)
	SlideToggleThumb       = browser.CSS(`.mat-slide-toggle-thumb`).FirstMatch()
	OverlayBackdrop        = browser.CSS(`.cdk-overlay-backdrop`).FirstMatch()

	AcceptButton   = browser.ByRole(browser.RoleButton, "Accept")
	CustomerAvatar = browser.ByRole(browser.RoleImg, "customer")
	ConnectedText  = browser.ByTextPattern(regexp.MustCompile(`Connected|On Call|00:0\d`))

	EndCallIcon      = browser.ByText("call_end")
	MinimizeToggle   = browser.ByText("picture_in_picture_alt")
	MinimizedEndCall = browser.ByRole(browser.RoleButton, "").WithText("call_end")

	WrapUpSpan   = browser.XPath(`//span[normalize-space()='Leave Without Wrap-Up']`)
	WrapUpButton = browser.ByRole(browser.RoleButton, "Leave Without Wrap-Up")

	CloseIcon         = browser.CSS(`mat-icon:has-text('close')`)
	CloseButton       = browser.ByRole(browser.RoleButton, "").WithText("close")
	EndPrompt         = browser.ByText("Are you sure you want to")
	EndPromptConfirm  = browser.XPath(`//button[@class='mat-focus-indicator confirm-btn mat-raised-button mat-button-base']`)
	InProgressPrompt  = browser.ByText("Call in progress, Are you")
	ConfirmSpan       = browser.XPath(`//span[normalize-space()='Confirm']`)
	ConfirmButton     = browser.ByRole(browser.RoleButton, "Confirm")
	HoldButton        = browser.ByText("pause").Within(browser.CSS("vg-controls"))
	OnHoldTimer       = browser.ByTextPattern(regexp.MustCompile(`Call On Hold - 00:\d{2}`))
	ResumeButton      = browser.ByText("phone_paused")
	CallTimer         = browser.ByTextPattern(regexp.MustCompile(`^\d{2}:\d{2}$`))
	MicIcon           = browser.XPath(`//mat-icon[normalize-space()='mic']`)
	MicOffIcon        = browser.XPath(`//mat-icon[normalize-space()='mic_off']`)
	MicToggle         = browser.ByText("mic").Exactly()
	MicOffToggle      = browser.ByText("mic_off").Exactly()
	ParticipantsBtn   = browser.ByRole(browser.RoleButton, "Participants")
	ParticipantsTitle = browser.ByRole(browser.RoleHeading, "Participants")
	CustomerEntry     = browser.ByRole(browser.RoleMenuitem, "Customer")
	PrimaryEntry      = browser.ByRolePattern(browser.RoleMenuitem, regexp.MustCompile(`(?i)Primary\(you\)$`))

	NavigateNext   = browser.ByRole(browser.RoleButton, "").WithText("navigate_next")
	NavigateBefore = browser.ByRole(browser.RoleButton, "").WithText("navigate_before")
	ChatTab        = browser.XPath(`//button[@aria-label='Chat']//mat-icon[@role='img'][normalize-space()='question_answer']`)
	CallTab        = browser.CSS("button").WithText("call")
)

// Webphone targets.
var (
	DialerInput  = browser.ByRole(browser.RoleTextbox, "Enter number")
	CallButton   = browser.ByRole(browser.RoleButton, "Call")
	KeypadButton = browser.ByRole(browser.RoleButton, keypadGlyph)
	DTMFZero     = browser.CSS("#hover-button0")
	HangupButton = browser.ByRole(browser.RoleButton, hangupGlyph)
)

// DigitButton is the dial-pad button for d.
func DigitButton(d rune) browser.Target {
	return browser.ByRole(browser.RoleButton, string(d)).Exactly()
}

// ChannelToggle is the slide toggle next to the named MRD channel.
func ChannelToggle(channel string) browser.Target {
	return browser.CSS(fmt.Sprintf("text=%s >> .. >> .mat-slide-toggle-thumb-container", channel))
}

// ChannelReady is the "<channel>(READY)" state label.
func ChannelReady(channel string) browser.Target {
	return browser.ByText(channel + "(READY)")
}
