package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ListState distinguishes a list nobody has touched from one that was cleared.
type ListState int

const (
	// ListNotStarted means no items were ever entered.
	ListNotStarted ListState = iota
	// ListEmpty means the list exists but holds no real items.
	ListEmpty
	// ListPopulated means the list holds at least one item.
	ListPopulated
)

var listStateNames = map[ListState]string{
	ListNotStarted: "not_started",
	ListEmpty:      "empty",
	ListPopulated:  "populated",
}

// String returns the wire name of the state.
func (s ListState) String() string {
	if name, ok := listStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ListState(%d)", int(s))
}

// ItemList is an ordered list of free-text items such as responsibilities or achievements.
type ItemList struct {
	State ListState
	Items []string
}

// NewItemList builds a list from user input, dropping blank entries.
func NewItemList(items ...string) ItemList {
	kept := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			kept = append(kept, item)
		}
	}
	if len(kept) == 0 {
		return ItemList{State: ListEmpty, Items: []string{}}
	}
	return ItemList{State: ListPopulated, Items: kept}
}

// FromPlaceholderList converts a stored list that uses a blank first element as the
// "no items yet" marker. A nil list was never started; an empty list or one whose first
// element is blank has no items. Otherwise the remaining blank entries are dropped.
func FromPlaceholderList(raw []string) ItemList {
	if raw == nil {
		return ItemList{State: ListNotStarted, Items: []string{}}
	}
	if len(raw) == 0 || strings.TrimSpace(raw[0]) == "" {
		return ItemList{State: ListEmpty, Items: []string{}}
	}
	return NewItemList(raw...)
}

// HasItems reports whether the list is populated.
func (l ItemList) HasItems() bool {
	return l.State == ListPopulated && len(l.Items) > 0
}

// Values returns the items, never nil.
func (l ItemList) Values() []string {
	if l.Items == nil {
		return []string{}
	}
	return l.Items
}

type itemListJSON struct {
	State string   `json:"state"`
	Items []string `json:"items"`
}

// MarshalJSON encodes the list as {"state": ..., "items": [...]}.
func (l ItemList) MarshalJSON() ([]byte, error) {
	return json.Marshal(itemListJSON{State: l.State.String(), Items: l.Values()})
}

// UnmarshalJSON accepts either the object form or a plain array of strings.
// A plain array follows the placeholder convention of FromPlaceholderList.
func (l *ItemList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*l = ItemList{State: ListNotStarted, Items: []string{}}
		return nil
	case len(data) > 0 && data[0] == '[':
		var raw []string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if raw == nil {
			raw = []string{}
		}
		*l = FromPlaceholderList(raw)
		return nil
	}

	var obj itemListJSON
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	list := NewItemList(obj.Items...)
	if obj.State == listStateNames[ListNotStarted] && !list.HasItems() {
		list.State = ListNotStarted
	}
	*l = list
	return nil
}
