package serialization

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/link"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/snapshot"
)

func sampleSnapshot() *snapshot.Snapshot {
	taken := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	return &snapshot.Snapshot{
		ID:           "snap-001",
		ExerciseID:   "ex-squat",
		ExerciseName: "Barbell Squat",
		Links: []link.ExerciseLink{
			{
				ID:               "link-1",
				SourceExerciseID: "ex-squat",
				TargetExerciseID: "ex-lunge",
				TargetName:       "Bodyweight Lunge",
				Type:             link.TypeWarmup,
				DisplayOrder:     1,
				IsActive:         true,
				CreatedAt:        taken,
				UpdatedAt:        taken,
			},
			{
				ID:               "link-2",
				SourceExerciseID: "ex-squat",
				TargetExerciseID: "ex-walk",
				TargetName:       "Treadmill Walk",
				Type:             link.TypeCooldown,
				DisplayOrder:     1,
				IsActive:         true,
				CreatedAt:        taken,
				UpdatedAt:        taken,
			},
		},
		Metadata: snapshot.Metadata{
			Source:    "link-api",
			CreatedBy: "pt-user",
			Tags:      []string{"leg-day"},
		},
		TakenAt: taken,
		Version: "1.0",
	}
}

func TestCodecRoundTrip(t *testing.T) {
	codecs := []Codec{NewJSONCodec(), NewMsgPackCodec()}

	for _, codec := range codecs {
		t.Run(codec.Name(), func(t *testing.T) {
			original := sampleSnapshot()

			data, err := codec.Encode(original)
			require.NoError(t, err)
			require.NotEmpty(t, data)

			var restored snapshot.Snapshot
			require.NoError(t, codec.Decode(data, &restored))

			assert.Equal(t, original.ID, restored.ID)
			assert.Equal(t, original.ExerciseName, restored.ExerciseName)
			require.Len(t, restored.Links, 2)
			assert.Equal(t, link.TypeWarmup, restored.Links[0].Type)
			assert.Equal(t, "Bodyweight Lunge", restored.Links[0].TargetName)
			assert.True(t, restored.TakenAt.Equal(original.TakenAt))
		})
	}
}

func TestCodecDecodeCorruptData(t *testing.T) {
	var s snapshot.Snapshot
	assert.Error(t, NewJSONCodec().Decode([]byte("{not json"), &s))
	assert.Error(t, NewMsgPackCodec().Decode([]byte{0xc1}, &s))
}

func TestSerializerCompression(t *testing.T) {
	compressions := []CompressionType{CompressionNone, CompressionGzip, CompressionZstd}

	for _, compression := range compressions {
		t.Run(string(compression), func(t *testing.T) {
			serializer := NewSerializer(SerializationConfig{
				Codec:       NewJSONCodec(),
				Compression: compression,
			})

			original := sampleSnapshot()
			data, err := serializer.Serialize(original)
			require.NoError(t, err)

			var restored snapshot.Snapshot
			require.NoError(t, serializer.Deserialize(data, &restored))
			assert.Equal(t, original.ExerciseID, restored.ExerciseID)
			assert.Equal(t, original.Links, restored.Links)
		})
	}
}

func TestSerializerCompressionShrinksRepetitivePayload(t *testing.T) {
	// A snapshot with many near-identical links compresses well.
	big := sampleSnapshot()
	for i := 0; i < 200; i++ {
		l := big.Links[0]
		l.ID = "link-repeat"
		big.Links = append(big.Links, l)
	}

	plain := NewSerializer(SerializationConfig{Codec: NewJSONCodec(), Compression: CompressionNone})
	zstdSer := NewSerializer(SerializationConfig{Codec: NewJSONCodec(), Compression: CompressionZstd})

	plainData, err := plain.Serialize(big)
	require.NoError(t, err)
	zstdData, err := zstdSer.Serialize(big)
	require.NoError(t, err)

	assert.Less(t, len(zstdData), len(plainData))
}

func TestSerializerEncryption(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef") // 32 bytes for AES-256

	serializer := NewSerializer(SerializationConfig{
		Codec:       NewMsgPackCodec(),
		Compression: CompressionGzip,
		EncryptKey:  key,
	})

	original := sampleSnapshot()
	data, err := serializer.Serialize(original)
	require.NoError(t, err)

	var restored snapshot.Snapshot
	require.NoError(t, serializer.Deserialize(data, &restored))
	assert.Equal(t, original.ID, restored.ID)
	assert.Equal(t, original.Metadata, restored.Metadata)

	t.Run("wrong key fails", func(t *testing.T) {
		wrongKey := NewSerializer(SerializationConfig{
			Codec:       NewMsgPackCodec(),
			Compression: CompressionGzip,
			EncryptKey:  []byte("ffffffffffffffffffffffffffffffff"),
		})
		var s snapshot.Snapshot
		assert.Error(t, wrongKey.Deserialize(data, &s))
	})

	t.Run("truncated ciphertext fails", func(t *testing.T) {
		var s snapshot.Snapshot
		assert.Error(t, serializer.Deserialize(data[:4], &s))
	})
}

func TestSerializerDeserializeGarbage(t *testing.T) {
	serializer := NewSerializer(SerializationConfig{
		Codec:       NewJSONCodec(),
		Compression: CompressionGzip,
	})

	var s snapshot.Snapshot
	assert.Error(t, serializer.Deserialize([]byte("not gzip at all"), &s))
}

func TestDefaultSerializer(t *testing.T) {
	serializer := DefaultSerializer()
	require.NotNil(t, serializer)
	assert.Equal(t, "msgpack", serializer.config.Codec.Name())
	assert.Equal(t, CompressionZstd, serializer.config.Compression)

	original := sampleSnapshot()
	data, err := serializer.Serialize(original)
	require.NoError(t, err)

	var restored snapshot.Snapshot
	require.NoError(t, serializer.Deserialize(data, &restored))
	assert.Equal(t, original.ExerciseName, restored.ExerciseName)
	require.Len(t, restored.Links, 2)
	assert.Equal(t, "ex-walk", restored.Links[1].TargetExerciseID)
}
