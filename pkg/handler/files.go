package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"sort"
	"strconv"

	"github.com/aretw0/transit/pkg/domain"
	"github.com/aretw0/transit/pkg/ports"
)

// RecordFileType is the file type of the JSON record artifact.
const RecordFileType = "record"

// Packager handles the archive artifacts of one object.
type Packager interface {
	Files(dep domain.Dependency) []domain.File
	Exists(ctx context.Context, targetID string) (bool, error)
	Export(ctx context.Context, archive ports.Archive, dep domain.Dependency) error
	// Verify checks that dep's artifacts are present and readable.
	Verify(ctx context.Context, archive ports.Archive, dep domain.Dependency) error
	Install(ctx context.Context, archive ports.Archive, dep domain.Dependency, ictx ports.ImportContext) error
	Remove(ctx context.Context, dep domain.Dependency, ictx ports.ImportContext) error
}

// FileStrategy packages an object as one JSON record of a table.
type FileStrategy struct {
	Settings TableSettings
	Records  ports.RecordService
	IDs      IDStrategy
	// Locator resolves the handlers of referenced types.
	Locator ports.HandlerLocator
}

var _ Packager = FileStrategy{}

// EntryName returns the archive entry holding dep's record.
func EntryName(dep domain.Dependency) string {
	return path.Join(dep.Type, url.PathEscape(dep.ID)) + ".json"
}

func (f FileStrategy) Files(dep domain.Dependency) []domain.File {
	return []domain.File{{FileType: RecordFileType, Name: EntryName(dep)}}
}

func (f FileStrategy) Exists(ctx context.Context, targetID string) (bool, error) {
	return f.Records.Exists(ctx, f.Settings.Table, targetID)
}

// Export reads dep's record from the source table and stores it in archive.
func (f FileStrategy) Export(ctx context.Context, archive ports.Archive, dep domain.Dependency) error {
	rec, err := f.Records.Read(ctx, f.Settings.Table, dep.ID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", dep, err)
	}
	return archive.Put(ctx, EntryName(dep), data)
}

// Verify opens and decodes dep's record without writing anything.
func (f FileStrategy) Verify(ctx context.Context, archive ports.Archive, dep domain.Dependency) error {
	_, err := f.load(ctx, archive, dep)
	return err
}

// Install writes dep's record to the target table under its allocated key,
// translating referenced ids through the import mapper.
func (f FileStrategy) Install(ctx context.Context, archive ports.Archive, dep domain.Dependency, ictx ports.ImportContext) error {
	rec, err := f.load(ctx, archive, dep)
	if err != nil {
		return err
	}

	key, err := f.IDs.Allocate(ctx, dep, ictx)
	if err != nil {
		return err
	}
	rec[f.Settings.IDColumn] = key

	if err := f.translateReferences(ctx, rec, ictx); err != nil {
		return err
	}
	return f.Records.Write(ctx, f.Settings.Table, key, rec)
}

func (f FileStrategy) load(ctx context.Context, archive ports.Archive, dep domain.Dependency) (ports.Record, error) {
	name := EntryName(dep)
	data, err := archive.Open(ctx, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &domain.MissingDependencyFileError{
			FileType:    RecordFileType,
			ObjectType:  dep.Type,
			ObjectID:    dep.ID,
			DisplayName: dep.Name(),
		}
	}
	if err != nil {
		if errors.Is(err, domain.ErrArchiveUnreadable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrArchiveUnreadable, err)
	}

	rec, err := decodeRecord(data)
	if err != nil {
		return nil, &domain.FormatError{Value: name, Reason: err.Error()}
	}
	return rec, nil
}

// Remove deletes the target record currently held by dep. Nothing is removed
// while dep has no key on the target.
func (f FileStrategy) Remove(ctx context.Context, dep domain.Dependency, ictx ports.ImportContext) error {
	key, found, err := f.IDs.ExistingTarget(ctx, dep, ictx)
	if err != nil || !found {
		return err
	}
	return f.Records.Delete(ctx, f.Settings.Table, key)
}

// translateReferences rewrites the referencing columns of rec with the target
// keys of the referenced objects. A reference to an object that has no key on
// the target is an InvalidIDMappingTargetError.
func (f FileStrategy) translateReferences(ctx context.Context, rec ports.Record, ictx ports.ImportContext) error {
	cols := make([]string, 0, len(f.Settings.References))
	for c := range f.Settings.References {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	for _, col := range cols {
		refType := f.Settings.References[col]
		switch v := rec[col].(type) {
		case string:
			if v == "" {
				continue
			}
			target, err := f.referenceTarget(ctx, refType, v, ictx)
			if err != nil {
				return err
			}
			rec[col] = target
		case json.Number:
			id := v.String()
			target, err := f.referenceTarget(ctx, refType, id, ictx)
			if err != nil {
				return err
			}
			n, err := strconv.ParseInt(target, 10, 64)
			if err != nil {
				return &domain.InvalidIDMappingTargetError{
					ObjectType:   refType,
					ID:           id,
					SourceServer: ictx.SourceServer(),
					Target:       target,
				}
			}
			rec[col] = n
		}
	}
	return nil
}

func (f FileStrategy) referenceTarget(ctx context.Context, refType, id string, ictx ports.ImportContext) (string, error) {
	target, found, err := existingTarget(ctx, f.Locator, domain.Dependency{Type: refType, ID: id}, ictx)
	if err != nil {
		return "", err
	}
	if !found {
		return "", &domain.InvalidIDMappingTargetError{
			ObjectType:   refType,
			ID:           id,
			SourceServer: ictx.SourceServer(),
		}
	}
	return target, nil
}

func decodeRecord(data []byte) (ports.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rec ports.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.New("record is null")
	}
	return rec, nil
}

// DelegateStrategy packages nothing: the object is installed solely through its children.
type DelegateStrategy struct {
	Discovery CatalogDiscovery
}

var _ Packager = DelegateStrategy{}

func (DelegateStrategy) Files(domain.Dependency) []domain.File { return nil }

func (d DelegateStrategy) Exists(ctx context.Context, targetID string) (bool, error) {
	return d.Discovery.Exists(ctx, targetID)
}

func (DelegateStrategy) Export(context.Context, ports.Archive, domain.Dependency) error { return nil }

func (DelegateStrategy) Verify(context.Context, ports.Archive, domain.Dependency) error { return nil }

func (DelegateStrategy) Install(context.Context, ports.Archive, domain.Dependency, ports.ImportContext) error {
	return nil
}

func (DelegateStrategy) Remove(context.Context, domain.Dependency, ports.ImportContext) error {
	return nil
}
