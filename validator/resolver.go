package validator

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Phonebooth/jesse/jesseerrors"
)

// checkRef dispatches a $ref. Fragment-only references resolve inside the
// current root document; anything else is combined with the enclosing id and
// looked up in the schema store.
func (s *state) checkRef(value, spec any, path string, depth int) error {
	ref, ok := spec.(string)
	if !ok {
		return s.schemaErr(jesseerrors.KindSchemaInvalid, path, "$ref must be a string, got %T", spec)
	}
	if ref == "#" {
		return s.validateNode(value, s.root, path, depth+1)
	}
	if strings.HasPrefix(ref, "#") {
		frag, err := url.PathUnescape(ref[1:])
		if err != nil {
			return &jesseerrors.SchemaError{
				Kind:    jesseerrors.KindInvalidRef,
				Path:    path,
				Ref:     ref,
				Message: "reference fragment is not a valid JSON pointer",
				Cause:   err,
			}
		}
		target, serr := resolvePointer(s.root, frag, path, ref)
		if serr != nil {
			return serr
		}
		return s.validateNode(value, target, path, depth+1)
	}
	return s.checkExternalRef(value, ref, path, depth)
}

// checkExternalRef resolves a reference that leaves the current document.
// The referenced document becomes the root for the duration of the subtree
// validation, with its own draft and reference base, and is tracked on the
// in-flight chain so that reference cycles surface as schema errors instead
// of unbounded recursion.
func (s *state) checkExternalRef(value any, ref, path string, depth int) error {
	if s.v.store == nil {
		return &jesseerrors.SchemaError{
			Kind:    jesseerrors.KindInvalidRef,
			Path:    path,
			Ref:     ref,
			Message: "external reference requires a schema store",
		}
	}
	combined, err := combineID(s.baseID, ref)
	if err != nil {
		return &jesseerrors.SchemaError{
			Kind:    jesseerrors.KindInvalidRef,
			Path:    path,
			Ref:     ref,
			Message: "reference is not a valid URI",
			Cause:   err,
		}
	}
	key, frag := splitFragment(combined)

	doc, resolvedKey, err := s.lookupSchema(key)
	if err != nil {
		return err
	}
	if s.resolving[resolvedKey] {
		return &jesseerrors.SchemaError{
			Kind:    jesseerrors.KindCyclicRef,
			Path:    path,
			Ref:     ref,
			Message: fmt.Sprintf("circular reference: %s", strings.Join(append(s.chain, resolvedKey), " -> ")),
		}
	}
	if len(s.chain) >= s.v.maxRefDepth {
		return &jesseerrors.ResourceLimitError{
			ResourceType: "ref_chain",
			Limit:        s.v.maxRefDepth,
			Message:      fmt.Sprintf("reference chain exceeds %d documents", s.v.maxRefDepth),
		}
	}

	root, ok := doc.(map[string]any)
	if !ok {
		return &jesseerrors.SchemaError{
			Kind:    jesseerrors.KindInvalidRef,
			Path:    path,
			Ref:     ref,
			Message: fmt.Sprintf("referenced schema %q is not an object", resolvedKey),
		}
	}
	target := any(root)
	if frag != "" {
		dec, err := url.PathUnescape(frag)
		if err != nil {
			return &jesseerrors.SchemaError{
				Kind:    jesseerrors.KindInvalidRef,
				Path:    path,
				Ref:     ref,
				Message: "reference fragment is not a valid JSON pointer",
				Cause:   err,
			}
		}
		target, err = resolvePointer(root, dec, path, ref)
		if err != nil {
			return err
		}
	}
	draft, err := draftOf(root, s.v.defaultDraft)
	if err != nil {
		return err
	}

	savedRoot, savedBase, savedDraft := s.root, s.baseID, s.draft
	s.root, s.draft = root, draft
	s.baseID = resolvedKey
	if id, ok := root["id"].(string); ok && id != "" {
		s.baseID = id
	}
	s.resolving[resolvedKey] = true
	s.chain = append(s.chain, resolvedKey)

	verr := s.validateNode(value, target, path, depth+1)

	delete(s.resolving, resolvedKey)
	s.chain = s.chain[:len(s.chain)-1]
	s.root, s.baseID, s.draft = savedRoot, savedBase, savedDraft
	return verr
}

// lookupSchema fetches a referenced document from the store, trying the key
// as written and with the empty-fragment suffix schema ids commonly carry.
func (s *state) lookupSchema(key string) (any, string, error) {
	for _, cand := range []string{key, key + "#"} {
		doc, err := s.v.store.Get(cand)
		if err == nil {
			return doc, cand, nil
		}
		var nf *jesseerrors.NotFoundError
		if !errors.As(err, &nf) {
			return nil, "", err
		}
	}
	return nil, "", &jesseerrors.NotFoundError{Key: key}
}

// resolvePointer walks a JSON pointer from root. A pointer that does not
// match the document shape is a schema fault, not a data failure.
func resolvePointer(root any, pointer, path, ref string) (any, error) {
	if pointer == "" {
		return root, nil
	}
	if pointer[0] != '/' {
		return nil, &jesseerrors.SchemaError{
			Kind:    jesseerrors.KindInvalidRef,
			Path:    path,
			Ref:     ref,
			Message: "reference fragment is not a JSON pointer",
		}
	}
	cur := root
	for _, tok := range strings.Split(pointer[1:], "/") {
		tok = strings.ReplaceAll(tok, "~1", "/")
		tok = strings.ReplaceAll(tok, "~0", "~")
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[tok]
			if !ok {
				return nil, &jesseerrors.SchemaError{
					Kind:    jesseerrors.KindInvalidRef,
					Path:    path,
					Ref:     ref,
					Message: fmt.Sprintf("pointer segment %q not found", tok),
				}
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(node) {
				return nil, &jesseerrors.SchemaError{
					Kind:    jesseerrors.KindInvalidRef,
					Path:    path,
					Ref:     ref,
					Message: fmt.Sprintf("pointer segment %q is not a valid array index", tok),
				}
			}
			cur = node[i]
		default:
			return nil, &jesseerrors.SchemaError{
				Kind:    jesseerrors.KindInvalidRef,
				Path:    path,
				Ref:     ref,
				Message: fmt.Sprintf("pointer segment %q addresses a %T, not a container", tok, cur),
			}
		}
	}
	return cur, nil
}

// combineID resolves ref against base per RFC 3986. An empty base leaves the
// reference as written.
func combineID(base, ref string) (string, error) {
	if base == "" {
		return ref, nil
	}
	bu, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ru, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return bu.ResolveReference(ru).String(), nil
}

func splitFragment(uri string) (key, frag string) {
	if i := strings.IndexByte(uri, '#'); i >= 0 {
		return uri[:i], uri[i+1:]
	}
	return uri, ""
}
