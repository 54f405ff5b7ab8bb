package wizard

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cast"

	"hrintake/internal/application"
	"hrintake/internal/errors"
)

// Options tunes entry-time normalization.
type Options struct {
	UppercaseFullName bool
	// Now supplies the current time for the year-of-passing bound.
	Now func() time.Time
}

// Reducer applies actions to records. Records are treated as immutable: Reduce
// returns an updated copy and the input keeps its contents. Slices that an
// action does not touch are shared between input and output.
type Reducer struct {
	opts Options
}

func NewReducer(opts Options) *Reducer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Reducer{opts: opts}
}

// Reduce applies a to rec. On error the original record is returned unchanged.
func (r *Reducer) Reduce(rec application.Record, a Action) (application.Record, error) {
	next := rec

	switch a.Type {
	case ActionSetField, ActionSetNested:
		p, err := ParsePath(a.Path)
		if err != nil {
			return rec, invalidField(a.Path, err.Error())
		}
		if a.Type == ActionSetField && p.Nested() {
			return rec, invalidField(a.Path, "SET_FIELD takes a top-level field, use SET_NESTED")
		}
		if a.Type == ActionSetNested && !p.Nested() {
			return rec, invalidField(a.Path, "SET_NESTED needs an object or array item path")
		}
		if err := setPath(&next, p, a.Value); err != nil {
			return rec, err
		}
		if err := r.normalize(rec, &next, p); err != nil {
			return rec, err
		}

	case ActionSetLanguages:
		text, err := cast.ToStringE(a.Value)
		if err != nil {
			return rec, invalidValue("languagesKnown", err)
		}
		next.LanguagesKnown = application.ParseLanguages(text)

	case ActionAddArrayItem:
		if err := r.addItem(&next, a.Path, a.Value); err != nil {
			return rec, err
		}

	case ActionRemoveArrayItem:
		if err := removeItem(&next, a.Path, a.Index); err != nil {
			return rec, err
		}

	default:
		return rec, errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown action type %q", a.Type), nil)
	}

	return next, nil
}

// ReduceAll applies actions in order and stops at the first failure, returning
// the record as it was before the failing action.
func (r *Reducer) ReduceAll(rec application.Record, actions []Action) (application.Record, error) {
	for i, a := range actions {
		next, err := r.Reduce(rec, a)
		if err != nil {
			if appErr, ok := errors.As(err); ok {
				appErr.WithContext("action_index", i)
			}
			return rec, err
		}
		rec = next
	}
	return rec, nil
}

func (r *Reducer) addItem(rec *application.Record, key string, value any) error {
	switch key {
	case "educationQualifications":
		item := application.NewEducationQualification()
		if err := decodeOnto(&item, value); err != nil {
			return invalidValue(key, err)
		}
		item.YearOfPassing = item.YearOfPassing.Clamp(0, r.opts.Now().Year())
		rec.EducationQualifications = appendItem(rec.EducationQualifications, item)
	case "workExperience":
		item := application.NewWorkExperience(0)
		if err := decodeOnto(&item, value); err != nil {
			return invalidValue(key, err)
		}
		item.SerialNo = len(rec.WorkExperience) + 1
		item.NetMonthlySalary = item.NetMonthlySalary.AtLeast(0)
		rec.WorkExperience = appendItem(rec.WorkExperience, item)
	case "references":
		item := application.NewReference()
		if err := decodeOnto(&item, value); err != nil {
			return invalidValue(key, err)
		}
		item.ContactNumber = phoneDigits(item.ContactNumber)
		rec.References = appendItem(rec.References, item)
	default:
		return invalidField(key, "not a list field")
	}
	return nil
}

func removeItem(rec *application.Record, key string, index int) error {
	var err error
	switch key {
	case "educationQualifications":
		rec.EducationQualifications, err = withoutItem(rec.EducationQualifications, index)
	case "workExperience":
		rec.WorkExperience, err = withoutItem(rec.WorkExperience, index)
	case "references":
		rec.References, err = withoutItem(rec.References, index)
	default:
		return invalidField(key, "not a list field")
	}
	if err != nil {
		return invalidField(fmt.Sprintf("%s[%d]", key, index), err.Error())
	}
	return nil
}

// appendItem never writes into the backing array of items.
func appendItem[T any](items []T, item T) []T {
	return append(slices.Clip(items), item)
}

// withoutItem keeps at least one entry: removing the last one is a no-op.
func withoutItem[T any](items []T, index int) ([]T, error) {
	if index < 0 || index >= len(items) {
		return items, fmt.Errorf("index out of range")
	}
	if len(items) == 1 {
		return items, nil
	}
	return slices.Delete(slices.Clone(items), index, index+1), nil
}

func decodeOnto(target any, value any) error {
	if value == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}

var (
	numberType    = reflect.TypeOf(application.Number{})
	languagesType = reflect.TypeOf(application.Languages{})
)

type validator interface{ Valid() bool }

// setPath assigns value at p inside rec, copying any slice it writes into.
func setPath(rec *application.Record, p Path, value any) error {
	root := reflect.ValueOf(rec).Elem()
	field, ok := fieldByTag(root, p.Key)
	if !ok {
		return invalidField(p.String(), "unknown field")
	}
	if !p.Nested() {
		return assign(field, p.String(), value)
	}

	target := field
	switch {
	case p.Indexed():
		if field.Kind() != reflect.Slice {
			return invalidField(p.String(), "not a list field")
		}
		if p.Index >= field.Len() {
			return invalidField(p.String(), "index out of range")
		}
		clone := reflect.MakeSlice(field.Type(), field.Len(), field.Len())
		reflect.Copy(clone, field)
		field.Set(clone)
		target = field.Index(p.Index)
	case field.Kind() != reflect.Struct:
		return invalidField(p.String(), "not an object field")
	}

	sub, ok := fieldByTag(target, p.Sub)
	if !ok {
		return invalidField(p.String(), "unknown field")
	}
	return assign(sub, p.String(), value)
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := range t.NumField() {
		tag, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if tag == name && tag != "-" {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func assign(field reflect.Value, path string, value any) error {
	switch field.Type() {
	case numberType:
		n, err := toNumber(value)
		if err != nil {
			return invalidValue(path, err)
		}
		field.Set(reflect.ValueOf(n))
		return nil
	case languagesType:
		langs, err := toLanguages(value)
		if err != nil {
			return invalidValue(path, err)
		}
		field.Set(reflect.ValueOf(langs))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		s, err := cast.ToStringE(value)
		if err != nil {
			return invalidValue(path, err)
		}
		candidate := reflect.ValueOf(s).Convert(field.Type())
		if v, ok := candidate.Interface().(validator); ok && s != "" && !v.Valid() {
			return errors.NewValidationError(errors.ErrCodeInvalidFieldValue,
				fmt.Sprintf("%q is not an allowed value for %s", s, path), nil).
				WithContext(errors.ContextField, path)
		}
		field.Set(candidate)
	case reflect.Bool:
		b, err := cast.ToBoolE(value)
		if err != nil {
			return invalidValue(path, err)
		}
		field.SetBool(b)
	case reflect.Int:
		i, err := cast.ToIntE(value)
		if err != nil {
			return invalidValue(path, err)
		}
		field.SetInt(int64(i))
	case reflect.Slice, reflect.Struct:
		decoded := reflect.New(field.Type())
		if err := decodeOnto(decoded.Interface(), value); err != nil {
			return invalidValue(path, err)
		}
		if field.Kind() == reflect.Slice && decoded.Elem().Len() == 0 {
			return errors.NewValidationError(errors.ErrCodeInvalidFieldValue,
				fmt.Sprintf("%s needs at least one entry", path), nil).
				WithContext(errors.ContextField, path)
		}
		field.Set(decoded.Elem())
	default:
		return invalidField(path, "field cannot be set")
	}
	return nil
}

func toNumber(value any) (application.Number, error) {
	switch v := value.(type) {
	case nil:
		return application.Number{}, nil
	case application.Number:
		return v, nil
	case string:
		return application.ParseNumber(v)
	default:
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return application.Number{}, err
		}
		return application.NumberFromFloat(f)
	}
}

func toLanguages(value any) (application.Languages, error) {
	switch v := value.(type) {
	case nil:
		return application.Languages{}, nil
	case string:
		return application.ParseLanguages(v), nil
	}
	list, err := cast.ToStringSliceE(value)
	if err != nil {
		return nil, err
	}
	out := application.Languages{}
	for _, lang := range list {
		if lang = strings.TrimSpace(lang); lang != "" {
			out = append(out, lang)
		}
	}
	return out, nil
}

func invalidField(path, reason string) *errors.AppError {
	return errors.NewValidationError(errors.ErrCodeInvalidField,
		fmt.Sprintf("%s: %s", path, reason), nil).
		WithContext(errors.ContextField, path)
}

func invalidValue(path string, cause error) *errors.AppError {
	return errors.NewValidationError(errors.ErrCodeInvalidFieldValue,
		fmt.Sprintf("invalid value for %s", path), cause).
		WithContext(errors.ContextField, path)
}
