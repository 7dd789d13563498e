package subscription

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/opscart/azure-vm-rightsizer/pkg/models"
)

// Prompt lists subscriptions on out and reads a 1-based selection from in.
// Range checking is left to Pick.
func Prompt(in io.Reader, out io.Writer, subs []models.Subscription) (int, error) {
	fmt.Fprintln(out, "\nAvailable subscriptions:")
	for i, sub := range subs {
		fmt.Fprintf(out, "%d. %s (%s)\n", i+1, sub.DisplayName, sub.ID)
	}
	fmt.Fprint(out, "\nSelect a subscription (number): ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return 0, fmt.Errorf("%w: failed to read selection: %w", models.ErrSubscriptionResolution, err)
	}

	index, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid input %q, please enter a number", models.ErrSubscriptionResolution, strings.TrimSpace(line))
	}
	return index, nil
}
