// Package browser drives Chromium through Playwright for the call-handling harness.
//
// A single SessionManager owns the playwright driver and one browser process.
// Each actor in a scenario (the agent desk operator, the webphone caller)
// gets its own Session: an isolated browser context with its own cookies,
// storage and permission grants, and exactly one page.
//
// # Session Lifecycle
//
//  1. Initialize: install (optional) and start playwright, launch Chromium
//  2. Launch: create a named context + page with TLS errors ignored and a
//     1280x900 viewport unless overridden
//  3. Use: page objects issue actions through the Surface interface
//  4. Close: Session.Close releases the context; Shutdown releases everything
//
// # Targets
//
// Elements are described by Target values (role + name, text, CSS or
// XPath, optionally filtered and chained). Page objects declare their targets
// once; Session resolves them into playwright locators on every action.
//
// # Example Usage
//
//	manager := browser.NewSessionManager(browser.ManagerOptions{Headless: true})
//	if err := manager.Initialize(); err != nil {
//	    return err
//	}
//	defer manager.Shutdown()
//
//	agent, err := manager.Launch(ctx, "agent", browser.LaunchOptions{})
//	err = agent.Goto(ctx, "https://desk.example.com", browser.NavigateOptions{
//	    WaitUntil: "domcontentloaded",
//	})
//	err = agent.Click(ctx, browser.ByRole(browser.RoleButton, "Accept"))
package browser
