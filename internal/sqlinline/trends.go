package sqlinline

const QEnsureTrendsTable = `--sql 90a176e5-3804-4c97-a4b2-015a0608caf9
create table if not exists trends (
  id text primary key,
  name text not null,
  images jsonb not null,
  main_image_index int not null default 0,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
);
`

const QListTrends = `--sql 278765b1-714a-4c54-a297-b56efb2f6d1a
select id, name, images, main_image_index
from trends;
`

const QSelectTrend = `--sql 2c50c6e8-4bba-47ac-b8df-c1c2ff524f02
select id, name, images, main_image_index
from trends
where id = $1::text;
`

const QInsertTrend = `--sql 85879fda-f9b3-46b9-a26d-629b428ad18d
insert into trends(id, name, images, main_image_index)
values ($1::text, $2::text, $3::jsonb, $4::int);
`

const QUpdateTrend = `--sql 57c1c4c7-d754-4d04-8984-e11124bf9e6f
update trends
set name = $2::text,
    images = $3::jsonb,
    main_image_index = $4::int,
    updated_at = now()
where id = $1::text;
`

const QDeleteTrend = `--sql 6617d84d-266c-4131-bff8-4db07005658b
delete from trends
where id = $1::text;
`
