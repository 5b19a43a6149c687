package rows

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/michaeldyrynda/scriptrun/internal/script/types"
)

func setDirectory(ctx *types.RunContext, args []string) (string, error) {
	ctx.Session.SetDirectory(args[0])
	return "", nil
}

func runCommand(ctx *types.RunContext, args []string) (string, error) {
	return "", ctx.Session.RunCommand(ctx.Context, args[0])
}

func waitFor(ctx *types.RunContext, args []string) (string, error) {
	seconds, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return "", fmt.Errorf("seconds must be an integer: %w", err)
	}
	ctx.Session.WaitFor(ctx.Context, seconds)
	return "", nil
}

func createFile(ctx *types.RunContext, args []string) (string, error) {
	return "", ctx.Session.CreateFile(args[0], args[1])
}

func createExecutableFile(ctx *types.RunContext, args []string) (string, error) {
	return "", ctx.Session.CreateExecutableFile(args[0], args[1])
}

func deleteFile(ctx *types.RunContext, args []string) (string, error) {
	deleted, err := ctx.Session.DeleteFile(args[0])
	if err != nil {
		return "", err
	}
	return strconv.FormatBool(deleted), nil
}

func fileMutatedAfter(ctx *types.RunContext, args []string) (string, error) {
	epoch, err := parseEpoch(args[1])
	if err != nil {
		return "", err
	}
	after, err := ctx.Session.FileMutatedAfter(args[0], epoch)
	if err != nil {
		return "", err
	}
	return strconv.FormatBool(after), nil
}

func fileMutatedBefore(ctx *types.RunContext, args []string) (string, error) {
	epoch, err := parseEpoch(args[1])
	if err != nil {
		return "", err
	}
	before, err := ctx.Session.FileMutatedBefore(args[0], epoch)
	if err != nil {
		return "", err
	}
	return strconv.FormatBool(before), nil
}

func openFile(ctx *types.RunContext, args []string) (string, error) {
	return "", ctx.Session.OpenFile(args[0])
}

func addLine(ctx *types.RunContext, args []string) (string, error) {
	return "", ctx.Session.AddLine(args[0])
}

func makeExecutable(ctx *types.RunContext, _ []string) (string, error) {
	return "", ctx.Session.MakeExecutable()
}

func writeAndClose(ctx *types.RunContext, _ []string) (string, error) {
	return "", ctx.Session.WriteAndClose()
}

func parseEpoch(value string) (int64, error) {
	epoch, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("epoch seconds must be an integer: %w", err)
	}
	return epoch, nil
}
