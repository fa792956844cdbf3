package mirror

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/cart/internal/otel"
	inErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/log"
)

// File keeps each slot in its own JSON file under a directory.
type File struct {
	dir string
}

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed creating mirror directory=%s with error=%w", dir, err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(slot Slot) string {
	return filepath.Join(f.dir, strings.ReplaceAll(slot.String(), ":", "_")+".json")
}

func (f *File) Read(c context.Context, slot Slot) ([]byte, error) {
	_, span := otel.Tracer.Start(c, "File Read")
	defer span.End()

	payload, err := os.ReadFile(f.path(slot))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrEmptySlot
	}
	if err != nil {
		err = fmt.Errorf("failed reading slot=%s with error=%w", slot, err)
		inErrors.HandleError(err, span)
		return nil, err
	}
	return payload, nil
}

// Write replaces the slot atomically through a rename so a crash never
// leaves a half-written file behind.
func (f *File) Write(c context.Context, slot Slot, payload []byte) error {
	c, span := otel.Tracer.Start(c, "File Write")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "File Write").Str(log.KeySlot, slot.String()).Logger()

	tmp, err := os.CreateTemp(f.dir, ".cart-*")
	if err != nil {
		err = fmt.Errorf("failed creating temp file with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(payload); err != nil {
		tmp.Close()
		err = fmt.Errorf("failed writing temp file with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if err = tmp.Close(); err != nil {
		err = fmt.Errorf("failed closing temp file with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if err = os.Rename(tmp.Name(), f.path(slot)); err != nil {
		err = fmt.Errorf("failed renaming temp file with error=%w", err)
		inErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	return nil
}

func (f *File) Wipe(c context.Context, slot Slot) error {
	_, span := otel.Tracer.Start(c, "File Wipe")
	defer span.End()

	err := os.Remove(f.path(slot))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		err = fmt.Errorf("failed wiping slot=%s with error=%w", slot, err)
		inErrors.HandleError(err, span)
		return err
	}
	return nil
}
