package domain

import "time"

// Pipeline — настроенная связка источников, эмбеддингов и стоков
// одного аккаунта.
//
// Создаётся при signup, мутируется только владельцем, жёстко не
// удаляется. Один pipeline аккаунта может быть помечен дефолтным.
type Pipeline struct {
	// ID — уникальный идентификатор pipeline.
	ID string `json:"id"`

	// Account — владелец.
	Account string `json:"account"`

	// Name — имя pipeline, заданное пользователем.
	Name string `json:"name"`

	// Config — источники, эмбеддинги, стоки (JSONB в БД).
	Config PipelineConfig `json:"config"`

	// IsEnabled — выключенный pipeline нельзя триггерить вручную;
	// переход false→true запускает полную индексацию (trigger=system).
	IsEnabled bool `json:"is_enabled"`

	// IsDefault — дефолтный pipeline аккаунта.
	IsDefault bool `json:"is_default"`

	// CreatedAt — время создания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего изменения (nil, если не менялся).
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// PipelineConfig — содержимое поля config.
//
// Порядок data_sources значим: шаги run'а создаются в этом порядке.
type PipelineConfig struct {
	// DataSources — упорядоченный список источников.
	DataSources []DataSource `json:"data_sources"`

	// Embeddings — конфигурация эмбеддингов.
	Embeddings EmbeddingConfig `json:"embeddings"`

	// DataSinks — упорядоченный список стоков.
	DataSinks []DataSink `json:"data_sinks"`
}

// FindEnabledDataSource возвращает первый включённый источник указанного
// провайдера или nil.
//
// Модель данных предполагает не больше одного источника на провайдера
// в рамках pipeline; при нескольких берётся первый по порядку хранения.
func (c *PipelineConfig) FindEnabledDataSource(integration Integration) *DataSource {
	for i := range c.DataSources {
		ds := &c.DataSources[i]
		if ds.IntegrationName == integration && ds.IsEnabled {
			return ds
		}
	}
	return nil
}

// DataSource — источник данных внутри config pipeline.
type DataSource struct {
	// ID — идентификатор источника (уникален в рамках pipeline).
	ID string `json:"id"`

	// IntegrationName — провайдер источника.
	IntegrationName Integration `json:"integration_name"`

	// IsEnabled — выключенные источники не получают шагов и сообщений.
	IsEnabled bool `json:"is_enabled"`

	// TextSplitter — конфигурация разбиения текста.
	TextSplitter TextSplitter `json:"text_splitter"`
}

// TextSplitterType — способ разбиения документа на чанки.
type TextSplitterType string

const (
	TextSplitterCharacter          TextSplitterType = "character"
	TextSplitterRecursiveCharacter TextSplitterType = "recursive_character"
	TextSplitterToken              TextSplitterType = "token"
)

// TextSplitter — tagged variant: тип + конфигурация своей формы.
type TextSplitter struct {
	// Type — вариант сплиттера.
	Type TextSplitterType `json:"type"`

	// Config — конфигурация варианта.
	Config TextSplitterConfig `json:"config"`
}

// TextSplitterConfig — параметры разбиения.
type TextSplitterConfig struct {
	ChunkSize    int      `json:"chunk_size,omitempty"`
	ChunkOverlap int      `json:"chunk_overlap,omitempty"`
	Separators   []string `json:"separators,omitempty"`
}

// DataSinkType — тип стока данных.
type DataSinkType string

const (
	// DataSinkVectorStore — запись в векторное хранилище.
	DataSinkVectorStore DataSinkType = "vector_store"
)

// DataSink — сток данных внутри config pipeline.
type DataSink struct {
	// ID — идентификатор стока (уникален в рамках pipeline).
	ID string `json:"id"`

	// Type — вариант стока.
	Type DataSinkType `json:"type"`

	// IsEnabled — выключенные стоки игнорируются worker'ом.
	IsEnabled bool `json:"is_enabled"`

	// VectorStore — конфигурация для type=vector_store.
	VectorStore *VectorStore `json:"config,omitempty"`
}

// VectorStoreType — провайдер векторного хранилища.
type VectorStoreType string

const (
	// VectorStorePinecone — Pinecone index.
	VectorStorePinecone VectorStoreType = "pinecone"
)

// VectorStore — tagged variant векторного хранилища.
type VectorStore struct {
	// StoreType — вариант хранилища.
	StoreType VectorStoreType `json:"store_type"`

	// Config — конфигурация варианта.
	Config VectorStoreConfig `json:"config"`
}

// VectorStoreConfig — подключение к векторному хранилищу.
type VectorStoreConfig struct {
	APIKey      string `json:"api_key,omitempty"`
	Environment string `json:"environment,omitempty"`
	IndexName   string `json:"index_name,omitempty"`
	Namespace   string `json:"namespace,omitempty"`
}

// EmbeddingType — провайдер эмбеддингов.
type EmbeddingType string

const (
	// EmbeddingOpenAI — OpenAI embeddings API.
	EmbeddingOpenAI EmbeddingType = "openai"
)

// EmbeddingConfig — tagged variant конфигурации эмбеддингов.
type EmbeddingConfig struct {
	// Type — вариант провайдера.
	Type EmbeddingType `json:"type"`

	// Config — конфигурация варианта.
	Config EmbeddingProviderConfig `json:"config"`
}

// EmbeddingProviderConfig — параметры провайдера эмбеддингов.
type EmbeddingProviderConfig struct {
	APIKey string `json:"api_key,omitempty"`
}
