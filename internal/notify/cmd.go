package notify

import tea "github.com/charmbracelet/bubbletea"

// WaitForChange returns a tea.Cmd that delivers the next ChangedMsg from
// ch. Re-issue it after handling each message.
func WaitForChange(ch <-chan ChangedMsg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}
