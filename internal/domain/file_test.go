package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindValid(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindFolder, true},
		{KindFile, true},
		{KindImage, true},
		{Kind(""), false},
		{Kind("directory"), false},
		{Kind("Folder"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.Valid())
		})
	}
}

func TestKindHasContent(t *testing.T) {
	assert.False(t, KindFolder.HasContent())
	assert.True(t, KindFile.HasContent())
	assert.True(t, KindImage.HasContent())
}

func TestParentRefRoot(t *testing.T) {
	var zero ParentRef
	assert.True(t, zero.IsRoot())
	assert.True(t, Root().IsRoot())
	assert.False(t, ParentOf(42).IsRoot())
	assert.Equal(t, int64(42), ParentOf(42).ID())
}

func TestParentRefJSON(t *testing.T) {
	t.Run("root marshals as zero", func(t *testing.T) {
		data, err := json.Marshal(Root())
		require.NoError(t, err)
		assert.Equal(t, "0", string(data))
	})

	t.Run("folder ref marshals as id", func(t *testing.T) {
		data, err := json.Marshal(ParentOf(17))
		require.NoError(t, err)
		assert.Equal(t, "17", string(data))
	})

	t.Run("zero unmarshals as root", func(t *testing.T) {
		var p ParentRef
		require.NoError(t, json.Unmarshal([]byte("0"), &p))
		assert.True(t, p.IsRoot())
	})

	t.Run("id unmarshals as folder ref", func(t *testing.T) {
		var p ParentRef
		require.NoError(t, json.Unmarshal([]byte("99"), &p))
		assert.False(t, p.IsRoot())
		assert.Equal(t, int64(99), p.ID())
	})

	t.Run("negative id rejected", func(t *testing.T) {
		var p ParentRef
		assert.Error(t, json.Unmarshal([]byte("-1"), &p))
	})

	t.Run("non numeric rejected", func(t *testing.T) {
		var p ParentRef
		assert.Error(t, json.Unmarshal([]byte(`"root"`), &p))
	})
}

func TestFileParentMapping(t *testing.T) {
	f := &File{}

	f.SetParent(Root())
	assert.Nil(t, f.ParentID)
	assert.True(t, f.Parent().IsRoot())

	f.SetParent(ParentOf(5))
	require.NotNil(t, f.ParentID)
	assert.Equal(t, int64(5), *f.ParentID)
	assert.Equal(t, int64(5), f.Parent().ID())
}

func TestFileView(t *testing.T) {
	parentID := int64(3)
	localPath := "ab/cd"

	f := &File{
		ID:        10,
		UserID:    7,
		Name:      "photo.png",
		Type:      KindImage,
		IsPublic:  true,
		ParentID:  &parentID,
		LocalPath: &localPath,
	}

	view := f.View()
	assert.Equal(t, int64(10), view.ID)
	assert.Equal(t, int64(7), view.UserID)
	assert.Equal(t, "photo.png", view.Name)
	assert.Equal(t, KindImage, view.Type)
	assert.True(t, view.IsPublic)
	assert.Equal(t, int64(3), view.ParentID.ID())

	data, err := json.Marshal(view)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 10,
		"userId": 7,
		"name": "photo.png",
		"type": "image",
		"isPublic": true,
		"parentId": 3
	}`, string(data))
}

func TestFileViewRootParentJSON(t *testing.T) {
	f := &File{ID: 1, UserID: 2, Name: "docs", Type: KindFolder}

	data, err := json.Marshal(f.View())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"parentId":0`)
}
